package report

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/github/go-spdx/v2/spdxexp"

	"github.com/matzehuels/pydigger/pkg/record"
)

// LongLicense is the length (in characters) from which an unregistered
// license value counts as license text rather than a malformed identifier.
const LongLicense = 20

// KnownLicenses lists the license spellings counted individually.
var KnownLicenses = []string{
	"ASL",
	"AFL-3.0",
	"AGPL",
	"AGPL-3",
	"AGPL-3.0-only",
	"Apache",
	"Apache-2.0",
	"Apache 2",
	"Apache 2.0",
	"Apache 2.0 license",
	"Apache 2.0 License",
	"Apache License 2.0",
	"BSD-2-Clause",
	"BSD-3-Clause",
	"LGPL-3",
	"CC BY-NC-SA 4.0",
	"GNU",
	"GNU GPL v3.0",
	"GPL-2.0-or-later",
	"GPL-3.0-or-later",
	"GPL-3.0-only",
	"GPLv3+",
	"MIT",
	"MIT License",
	"MIT OR Apache-2.0",
	"Proprietary",
}

// LicenseSummary buckets records by their declared license.
type LicenseSummary struct {
	Licenses map[string]int `json:"licenses"`

	NoLicenseCount   int               `json:"no_license_count"`
	NoLicense        []record.Exemplar `json:"no_license"`
	BadLicenseCount  int               `json:"bad_license_count"`
	BadLicense       []record.Exemplar `json:"bad_license"`
	LongLicenseCount int               `json:"long_license_count"`
	LongLicense      []record.Exemplar `json:"long_license"`

	// SPDXValidCount counts unregistered values that still parse as SPDX
	// license expressions. Those records are also in bad_license or
	// long_license.
	SPDXValidCount int `json:"spdx_valid_count"`
}

func newLicenseSummary() *LicenseSummary {
	s := &LicenseSummary{
		Licenses:    make(map[string]int, len(KnownLicenses)),
		NoLicense:   emptyList(),
		BadLicense:  emptyList(),
		LongLicense: emptyList(),
	}
	for _, l := range KnownLicenses {
		s.Licenses[l] = 0
	}
	return s
}

// LicenseOf returns the license value a record is evaluated by: the SPDX
// expression when declared, else the legacy license field.
func LicenseOf(r *record.Record) (string, bool) {
	if r.LicenseExpression != "" {
		return r.LicenseExpression, true
	}
	if r.License != "" {
		return r.License, true
	}
	return "", false
}

func (s *LicenseSummary) add(r *record.Record, logger *log.Logger) {
	value, ok := LicenseOf(r)
	if !ok {
		bucket(&s.NoLicenseCount, &s.NoLicense, r)
		return
	}
	license := strings.TrimSpace(value)
	if _, known := s.Licenses[license]; known {
		s.Licenses[license]++
		return
	}

	if valid, _ := spdxexp.ValidateLicenses([]string{license}); valid {
		s.SPDXValidCount++
	}
	if utf8.RuneCountInString(license) < LongLicense {
		logger.Info("unrecognized short license", "license", license, "name", r.Name)
		bucket(&s.BadLicenseCount, &s.BadLicense, r)
		return
	}
	logger.Info("long license", "name", r.Name)
	bucket(&s.LongLicenseCount, &s.LongLicense, r)
}
