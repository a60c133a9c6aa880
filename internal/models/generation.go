package models

// DecodePolicy selects what generated code does with an undecodable bridge value
type DecodePolicy string

const (
	// DecodePanic aborts the process, mirroring an unwrap on the decoded value
	DecodePanic DecodePolicy = "panic"
	// DecodeReturn hands the failure back as an error result
	DecodeReturn DecodePolicy = "return"
)

// DefaultNamespace is where the host exposes its bridge
const DefaultNamespace = "window.__TAURI__.core"

// DefaultHostPackage is the package whose parameters skeletons drop
const DefaultHostPackage = "tauri"

// GenerationConfig holds the options applied to one trigger
type GenerationConfig struct {
	CmdPrefix     string       // prepended to function names to form command identifiers
	Namespace     string       // host namespace the bridge declaration resolves
	OnDecodeError DecodePolicy // generated behavior on undecodable responses
	HostPackages  []string     // packages whose parameters are host-injected
}

// DefaultGenerationConfig returns the configuration used when nothing is set
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Namespace:     DefaultNamespace,
		OnDecodeError: DecodePanic,
		HostPackages:  []string{DefaultHostPackage},
	}
}

// GeneratedFile is the output of one generation unit
type GeneratedFile struct {
	SourcePath string // input file
	Path       string // where the output is written
	Content    []byte // formatted Go source
	Stats      GenerationStats
}

// GenerationStats counts what a unit produced
type GenerationStats struct {
	Stubs     int
	Events    int
	Variants  int
	Skeletons int
}

// Add accumulates another unit's counts
func (s *GenerationStats) Add(other GenerationStats) {
	s.Stubs += other.Stubs
	s.Events += other.Events
	s.Variants += other.Variants
	s.Skeletons += other.Skeletons
}
