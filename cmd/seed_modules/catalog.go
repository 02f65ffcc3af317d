package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/access"
	"github.com/marianoberton/marketpaper-demo-sub001/internal/domain/entity"
)

// catalogRow un módulo del CSV con su orden de presentación.
type catalogRow struct {
	entity.Module
	SortOrder int
}

// decodeInput devuelve el contenido en UTF-8. Si no es UTF-8 válido se asume ISO-8859-1.
func decodeInput(raw []byte) (io.Reader, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf")) // BOM
	if utf8.Valid(raw) {
		return bytes.NewReader(raw), nil
	}
	return transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()), nil
}

// parseCatalog lee el CSV (coma o punto y coma), salta el encabezado si existe y valida cada fila.
// Sin sort_order explícito se usa el orden de presentación por categoría y nombre.
func parseCatalog(raw []byte) ([]catalogRow, error) {
	in, err := decodeInput(raw)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if bytes.Count(raw, []byte(";")) > bytes.Count(raw, []byte(",")) {
		r.Comma = ';'
	}

	var rows []catalogRow
	seen := make(map[string]int)
	explicitOrder := false
	for line := 1; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "id") {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("línea %d: se esperan al menos id,name,category", line)
		}
		id := strings.ToLower(strings.TrimSpace(rec[0]))
		if !entity.ValidModuleID(id) {
			return nil, fmt.Errorf("línea %d: id de módulo inválido %q", line, id)
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("línea %d: id %q repetido (línea %d)", line, id, prev)
		}
		seen[id] = line

		row := catalogRow{Module: entity.Module{
			ID:       id,
			Name:     strings.TrimSpace(rec[1]),
			Category: strings.TrimSpace(rec[2]),
		}}
		if row.Name == "" {
			return nil, fmt.Errorf("línea %d: name vacío", line)
		}
		if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
			row.IsCore, err = parseBool(rec[3])
			if err != nil {
				return nil, fmt.Errorf("línea %d: is_core: %w", line, err)
			}
		}
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			row.SortOrder, err = strconv.Atoi(strings.TrimSpace(rec[4]))
			if err != nil {
				return nil, fmt.Errorf("línea %d: sort_order: %w", line, err)
			}
			explicitOrder = true
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New("el CSV no tiene módulos")
	}

	if !explicitOrder {
		mods := make([]entity.Module, len(rows))
		for i, row := range rows {
			mods[i] = row.Module
		}
		access.SortCatalog(mods)
		for i := range mods {
			rows[i] = catalogRow{Module: mods[i], SortOrder: (i + 1) * 10}
		}
	}
	return rows, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "si", "sí", "yes", "x":
		return true, nil
	case "0", "false", "no", "":
		return false, nil
	}
	return false, fmt.Errorf("valor booleano inválido %q", s)
}

// writeSeed escribe un upsert idempotente del catálogo.
func writeSeed(w io.Writer, rows []catalogRow, source string) error {
	var b strings.Builder
	b.WriteString("-- Catálogo global de módulos\n")
	fmt.Fprintf(&b, "-- Generado por cmd/seed_modules desde %s\n\n", source)
	b.WriteString("INSERT INTO modules (id, name, category, is_core, sort_order) VALUES\n")
	for i, row := range rows {
		sep := ","
		if i == len(rows)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  ('%s', '%s', '%s', %t, %d)%s\n",
			escapeSQL(row.ID), escapeSQL(row.Name), escapeSQL(row.Category), row.IsCore, row.SortOrder, sep)
	}
	b.WriteString("ON CONFLICT (id) DO UPDATE SET\n")
	b.WriteString("  name = EXCLUDED.name,\n")
	b.WriteString("  category = EXCLUDED.category,\n")
	b.WriteString("  is_core = EXCLUDED.is_core,\n")
	b.WriteString("  sort_order = EXCLUDED.sort_order;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
