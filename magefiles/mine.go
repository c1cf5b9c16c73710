//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Mine mines every PubMed XML file under corpus/ into results/.
// Set GENE_RELATIONS_DB to also index the results.
func Mine() error {
	mg.Deps(Build, Init)

	files, err := filepath.Glob(filepath.Join("corpus", "*.xml*"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("[mine] No XML files in corpus/.")
		return nil
	}

	bin := filepath.Join(binDir, binName)
	for _, f := range files {
		stem := filepath.Join("results", trimExt(filepath.Base(f)))
		if err := sh.RunV(bin, "local", f, "--output", stem, "--no-progress"); err != nil {
			return fmt.Errorf("mining %s: %w", f, err)
		}
	}
	return nil
}

// Index ingests every result file under results/ into index/.
func Index() error {
	mg.Deps(Build, Init)

	files, err := filepath.Glob(filepath.Join("results", "*.json"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("[index] No result files in results/.")
		return nil
	}
	args := append([]string{"store", "index", "--dir", "index"}, files...)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Clean removes the binary directory.
func Clean() error {
	return os.RemoveAll(binDir)
}

// trimExt drops every extension, so "a.xml.gz" becomes "a".
func trimExt(name string) string {
	for ext := filepath.Ext(name); ext != ""; ext = filepath.Ext(name) {
		name = name[:len(name)-len(ext)]
	}
	return name
}
