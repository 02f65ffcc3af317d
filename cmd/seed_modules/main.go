// seed_modules genera la migración SQL que carga el catálogo global de módulos
// a partir de un CSV exportado del alta comercial (id,name,category,is_core[,sort_order]).
//
// Uso: go run ./cmd/seed_modules [ruta/modulos.csv] [salida.sql]
// Por defecto lee modules.csv del directorio actual y escribe
// internal/infrastructure/postgres/migrations/000002_seed_modules.up.sql.
// Acepta UTF-8 o ISO-8859-1 (las planillas exportadas desde Excel suelen venir en Latin-1).
package main

import (
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	csvPath := "modules.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "000002_seed_modules.up.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	raw, err := os.ReadFile(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}
	modules, err := parseCatalog(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Procesar CSV: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSeed(out, modules, filepath.Base(csvPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d módulos\n", outPath, len(modules))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
