package det01

// Internal units follow the usual transport-code convention: lengths in mm,
// times in ns, energies in MeV.
const (
	mm = 1.0
	cm = 10 * mm
	m  = 1000 * mm
	nm = 1e-6 * mm

	ns = 1.0

	MeV = 1.0
	GeV = 1000 * MeV
	eV  = 1e-6 * MeV

	gPerCm3 = 1.0

	// speed of light in mm/ns
	cLight = 299.792458 * mm / ns

	muonMass = 105.6583755 * MeV
)
