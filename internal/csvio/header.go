package csvio

import (
	"fmt"
	"sort"
	"strings"
)

// Canonical field keys for the 25 expected columns. Display headers are the
// Portuguese vendor labels; matching is case-sensitive but tolerant of the
// irregular whitespace runs the exports contain.
const (
	KeyClient            = "cliente"
	KeyPlate             = "placa"
	KeyAsset             = "ativo"
	KeyTimestamp         = "data"
	KeyGPRSTimestamp     = "data_gprs"
	KeySpeed             = "velocidade_km"
	KeyIgnition          = "ignicao"
	KeyDriver            = "motorista"
	KeyGPS               = "gps"
	KeyGPRS              = "gprs"
	KeyLocation          = "localizacao"
	KeyAddress           = "endereco"
	KeyEventType         = "tipo_evento"
	KeyGeofence          = "cerca"
	KeyExit              = "saida"
	KeyEntry             = "entrada"
	KeyPacket            = "pacote"
	KeyOdometerPeriod    = "odometro_periodo_km"
	KeyEngineHoursPeriod = "horimetro_periodo"
	KeyEngineHoursTotal  = "horimetro_embarcado"
	KeyOdometerTotal     = "odometro_embarcado_km"
	KeyBattery           = "bateria"
	KeyImage             = "imagem"
	KeyVoltage           = "tensao"
	KeyBlocked           = "bloqueado"
)

var displayHeaders = map[string]string{
	"Cliente":                  KeyClient,
	"Placa":                    KeyPlate,
	"Ativo":                    KeyAsset,
	"Data":                     KeyTimestamp,
	"Data (GPRS)":              KeyGPRSTimestamp,
	"Velocidade (Km)":          KeySpeed,
	"Ignição":                  KeyIgnition,
	"Motorista":                KeyDriver,
	"GPS":                      KeyGPS,
	"Gprs":                     KeyGPRS,
	"Localização":              KeyLocation,
	"Endereço":                 KeyAddress,
	"Tipo do Evento":           KeyEventType,
	"Cerca":                    KeyGeofence,
	"Saida":                    KeyExit,
	"Entrada":                  KeyEntry,
	"Pacote":                   KeyPacket,
	"Odômetro do período (Km)": KeyOdometerPeriod,
	"Horímetro do período":     KeyEngineHoursPeriod,
	"Horímetro embarcado":      KeyEngineHoursTotal,
	"Odômetro embarcado (Km)":  KeyOdometerTotal,
	"Bateria":                  KeyBattery,
	"Imagem":                   KeyImage,
	"Tensão":                   KeyVoltage,
	"Bloqueado":                KeyBlocked,
}

var canonicalKeys = func() map[string]struct{} {
	set := make(map[string]struct{}, len(displayHeaders))
	for _, key := range displayHeaders {
		set[key] = struct{}{}
	}
	return set
}()

// RequiredKeys returns all canonical keys, sorted, for validation reports.
func RequiredKeys() []string {
	keys := make([]string, 0, len(canonicalKeys))
	for key := range canonicalKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeHeader collapses interior whitespace runs to single spaces and trims
// the ends. Idempotent.
func NormalizeHeader(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

// CanonicalKey maps a header to its canonical field key. Both the accented
// display label and the already-canonical form are accepted; anything else is
// passed through unchanged so extra vendor columns never abort a file.
func CanonicalKey(header string) (string, bool) {
	normalized := NormalizeHeader(header)
	if key, ok := displayHeaders[normalized]; ok {
		return key, true
	}
	if _, ok := canonicalKeys[normalized]; ok {
		return normalized, true
	}
	return normalized, false
}

// MissingHeadersError lists canonical keys absent from a file's header row.
type MissingHeadersError struct {
	Missing []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("csvio: missing required columns: %s", strings.Join(e.Missing, ", "))
}

// ValidateRequired checks the full canonical key set against the (already
// normalized) headers. Used by the strict upload path; the bulk-migration path
// skips it and relies on best-effort per-row lookups.
func ValidateRequired(headers []string) error {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		key, _ := CanonicalKey(h)
		present[key] = struct{}{}
	}

	var missing []string
	for _, key := range RequiredKeys() {
		if _, ok := present[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &MissingHeadersError{Missing: missing}
	}
	return nil
}
