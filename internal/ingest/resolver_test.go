package ingest

import (
	"context"
	"errors"
	"testing"
)

func TestResolverCachesClientLookups(t *testing.T) {
	clients := newFakeClientStore()
	res := newResolver(clients, newFakeVehicleStore())

	first, err := res.resolveClient(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := res.resolveClient(context.Background(), "ACME")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first != second {
		t.Fatalf("ids differ: %d vs %d", first, second)
	}
	if clients.calls != 1 {
		t.Fatalf("expected 1 store call, got %d", clients.calls)
	}
}

func TestResolverBlankClientUsesFallback(t *testing.T) {
	clients := newFakeClientStore()
	res := newResolver(clients, newFakeVehicleStore())

	if _, err := res.resolveClient(context.Background(), "   "); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, ok := clients.ids[FallbackClientName]; !ok {
		t.Fatalf("fallback client not created, have %v", clients.ids)
	}
}

func TestResolverPlateOwnershipIsStable(t *testing.T) {
	vehicles := newFakeVehicleStore()
	res := newResolver(newFakeClientStore(), vehicles)
	ctx := context.Background()

	first, err := res.resolveVehicle(ctx, "ABC1234", 1, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// Same plate reported under a different client must return the same
	// vehicle and leave ownership untouched.
	second, err := res.resolveVehicle(ctx, "ABC1234", 2, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if first != second {
		t.Fatalf("plate mapped to two vehicles: %d vs %d", first, second)
	}
	if vehicles.calls != 1 {
		t.Fatalf("expected 1 store call, got %d", vehicles.calls)
	}
	if owner := vehicles.owners["ABC1234"]; owner != 1 {
		t.Fatalf("ownership reassigned to client %d", owner)
	}
}

func TestResolverRejectsMissingPlate(t *testing.T) {
	res := newResolver(newFakeClientStore(), newFakeVehicleStore())

	_, err := res.resolveVehicle(context.Background(), "  ", 1, "")
	if !errors.Is(err, ErrMissingPlate) {
		t.Fatalf("expected ErrMissingPlate, got %v", err)
	}
}

func TestResolverPropagatesStoreErrors(t *testing.T) {
	clients := newFakeClientStore()
	clients.err = errors.New("connection refused")
	res := newResolver(clients, newFakeVehicleStore())

	if _, err := res.resolveClient(context.Background(), "ACME"); err == nil {
		t.Fatalf("expected store error to propagate")
	}
	// A failed lookup must not poison the cache.
	clients.err = nil
	if _, err := res.resolveClient(context.Background(), "ACME"); err != nil {
		t.Fatalf("retry after store recovery: %v", err)
	}
}
