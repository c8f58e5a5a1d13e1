// Package testutil provides helpers shared by package tests: on-disk input
// trees and deterministic id generators.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to root/rel, creating parent directories.
func WriteFile(t testing.TB, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteTree writes every file of tree (relative path -> content) under root.
func WriteTree(t testing.TB, root string, tree map[string]string) {
	t.Helper()
	for rel, content := range tree {
		WriteFile(t, root, rel, content)
	}
}

// StandardTree returns a fresh temp input root holding three specifications:
//
//   - SR (Optical): general [metadata, traceability], radiometric [toa, sr]
//   - ST (Optical): general [traceability-st, metadata], radiometric [toa, st]
//   - NRB (SAR):    general [metadata]
//
// "traceability" and "traceability-st" share a title. SR and ST disagree on
// the order of the general category. toa depends on metadata from another
// category; sr and st depend on toa.
func StandardTree(t testing.TB) string {
	t.Helper()
	root := t.TempDir()
	WriteTree(t, root, StandardFiles())
	return root
}

// StandardFiles returns the file set written by StandardTree.
func StandardFiles() map[string]string {
	return map[string]string{
		"glossary/pixel.yaml":       "term: Pixel\ndescription: A picture element.\n",
		"glossary/pixel-lower.yaml": "term: pixel\ndescription: Duplicate spelling.\n",
		"glossary/ard.yaml":         "term: ARD\ndescription: Analysis Ready Data.\n",
		"glossary/toa.yaml":         "term: TOA\ndescription: Top of atmosphere.\n",

		"references/ceos2021.bib": "@misc{ceos2021, title={CEOS ARD Framework}}\n",
		"references/usgs2019.bib": "@misc{usgs2019, title={Landsat Handbook}}\n",

		"sections/introduction/overview.yaml": "title: Overview\n" +
			"description: include:overview\n" +
			"glossary: [ard]\n" +
			"references: [ceos2021]\n",
		"sections/introduction/overview.md": "This document specifies ARD.\n",
		"sections/annexes/history.yaml":     "title: History\ndescription: Annex text.\n",

		"sections/requirement-categories/general.yaml": "title: General Metadata\n" +
			"description: General requirements.\n" +
			"glossary: [pixel]\n",
		"sections/requirement-categories/radiometric.yaml": "title: Radiometric Corrections\n" +
			"description: Radiometric requirements.\n",

		"requirements/metadata.yaml": "title: Metadata Machine Readability\n" +
			"threshold:\n  description: Metadata is machine readable.\n" +
			"goal:\n  description: Metadata follows a community standard.\n  notes: [See ISO 19115.]\n" +
			"glossary: [pixel-lower]\n",
		"requirements/traceability.yaml": "title: Traceability\n" +
			"description: Processing history is recorded, see @metadata.\n" +
			"threshold:\n  description: Follow @metadata.\n  notes: ['@metadata-extended is unrelated.']\n" +
			"goal:\n" +
			"dependencies: [metadata]\n",
		"requirements/traceability-st.yaml": "title: Traceability\n" +
			"description: Temperature processing history is recorded.\n",
		"requirements/toa.yaml": "title: Top of Atmosphere Reflectance\n" +
			"description: Uses @metadata for calibration.\n" +
			"glossary: [toa]\n" +
			"references: [usgs2019]\n" +
			"dependencies: [metadata]\n",
		"requirements/sr.yaml": "title: Surface Reflectance Measurement\n" +
			"dependencies: [toa]\n",
		"requirements/st.yaml": "title: Surface Temperature Measurement\n" +
			"dependencies: [toa]\n" +
			"legacy:\n  optical: \"3.2\"\n",

		"pfs/SR/document.yaml": "id: SR\n" +
			"title: Surface Reflectance\n" +
			"version: \"5.1\"\n" +
			"type: Optical\n" +
			"applies_to: Optical multispectral data.\n" +
			"introduction: [overview]\n" +
			"glossary: [pixel]\n" +
			"references: [ceos2021]\n" +
			"annexes: [history]\n",
		"pfs/SR/authors.yaml": "- name: CEOS\n  members: [Alice, Bob]\n" +
			"- name: USGS\n  country: USA\n  members: [Carol]\n",
		"pfs/SR/requirements.yaml": "- category: general\n  requirements: [metadata, traceability]\n" +
			"- category: radiometric\n  requirements: [toa, sr]\n",

		"pfs/ST/document.yaml": "id: ST\n" +
			"title: Surface Temperature\n" +
			"version: \"5.0\"\n" +
			"type: Optical\n" +
			"applies_to: Thermal infrared data.\n" +
			"introduction: [overview]\n" +
			"glossary: [toa]\n",
		"pfs/ST/authors.yaml": "- name: USGS\n  country: USA\n  members: [Dave, Carol]\n" +
			"- name: NASA\n  country: USA\n  members: [Erin]\n",
		"pfs/ST/requirements.yaml": "- category: general\n  requirements: [traceability-st, metadata]\n" +
			"- category: radiometric\n  requirements: [toa, st]\n",

		"pfs/NRB/document.yaml": "id: NRB\n" +
			"title: Normalised Radar Backscatter\n" +
			"version: \"5.5\"\n" +
			"type: SAR\n" +
			"applies_to: SAR backscatter.\n",
		"pfs/NRB/authors.yaml":      "- name: CEOS\n  members: [Frank, Alice]\n",
		"pfs/NRB/requirements.yaml": "- category: general\n  requirements: [metadata]\n",
	}
}
