package det01

import (
	"golang.org/x/exp/slices"
)

// VersionSpec describes what one application version builds and records.
type VersionSpec struct {
	Name            string
	NDetectors      int
	PmtSD           bool
	PhotonSummary   bool
	Histograms      bool
	Ntuple          bool
	Positions       bool
	DefaultFileType string
}

var versions = []VersionSpec{
	{Name: "v00", NDetectors: 2, Histograms: true, DefaultFileType: "csv"},
	{Name: "v01", NDetectors: 2, PmtSD: true, PhotonSummary: true, Histograms: true, DefaultFileType: "csv"},
	{Name: "v01.1", NDetectors: 2, PmtSD: true, Ntuple: true, DefaultFileType: "root"},
	{Name: "v0100", NDetectors: 2, PmtSD: true, Ntuple: true, DefaultFileType: "root"},
	{Name: "v02", NDetectors: 4, PmtSD: true, Ntuple: true, Positions: true, DefaultFileType: "root"},
	{Name: "v0200", NDetectors: 4, PmtSD: true, Ntuple: true, Positions: true, DefaultFileType: "root"},
}

func LookupVersion(name string) (VersionSpec, error) {
	idx := slices.IndexFunc(versions, func(v VersionSpec) bool { return v.Name == name })
	if idx < 0 {
		return VersionSpec{}, &ErrUnknownVersion{Version: name}
	}
	return versions[idx], nil
}

func VersionNames() []string {
	names := make([]string, len(versions))
	for i, v := range versions {
		names[i] = v.Name
	}
	return names
}

// Schema returns the ntuple layout of the version, or nil when the version
// only records histograms.
func (v VersionSpec) Schema(primaryFlags bool) *Schema {
	if !v.Ntuple {
		return nil
	}
	return NewCosmicSchema(v.NDetectors, v.Positions, primaryFlags)
}
