package config

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"cfgc/common"
	"cfgc/report"
	"cfgc/target"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// tomlProfileFile represents the profile file as it is encoded in TOML.
type tomlProfileFile struct {
	Codegen *tomlCodegen  `toml:"codegen"`
	Targets []target.Spec `toml:"targets,omitempty"`
}

// tomlCodegen represents the code generation defaults as encoded in TOML.
type tomlCodegen struct {
	Target   string `toml:"target"`
	Output   string `toml:"output"`
	EmitLLVM bool   `toml:"emit-llvm"`
	DumpBits bool   `toml:"dump-bits"`
	LogLevel string `toml:"log-level"`
}

// Profile holds the code generation defaults a build starts from.  Command
// line flags override its fields.
type Profile struct {
	Target   string
	Output   string
	EmitLLVM bool
	DumpBits bool
	LogLevel string

	// Targets are extra target table entries.
	Targets []target.Spec

	// Path is the file the profile was loaded from.  It is empty for the
	// default profile.
	Path string
}

// OutputNames are the accepted spellings of an output sink.
var OutputNames = []string{"print", "asm", "obj", "mem", "llvm"}

// Default returns the profile used when no profile file exists.
func Default() *Profile {
	name := "amd64-linux"
	if d := target.Current(); d != nil {
		name = d.Name
	}

	return &Profile{
		Target:   name,
		Output:   "obj",
		LogLevel: "verbose",
	}
}

// Load reads and validates the profile at path.
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	tpf := &tomlProfileFile{}
	if err := toml.Unmarshal(buff, tpf); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}

	prof := Default()
	prof.Path = path
	prof.Targets = tpf.Targets

	if cg := tpf.Codegen; cg != nil {
		if cg.Target != "" {
			prof.Target = cg.Target
		}
		if cg.Output != "" {
			prof.Output = cg.Output
		}
		if cg.LogLevel != "" {
			prof.LogLevel = cg.LogLevel
		}
		prof.EmitLLVM = cg.EmitLLVM
		prof.DumpBits = cg.DumpBits
	}

	if err := prof.validate(); err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}

	return prof, nil
}

// validate checks the fields that can be checked without touching the target
// table.
func (p *Profile) validate() error {
	if !isOutputName(p.Output) {
		return errors.Errorf("unknown output `%s`", p.Output)
	}

	if _, ok := report.ParseLogLevel(p.LogLevel); !ok {
		return errors.Errorf("unknown log level `%s`", p.LogLevel)
	}

	return nil
}

func isOutputName(name string) bool {
	for _, o := range OutputNames {
		if o == name {
			return true
		}
	}

	return false
}

// RegisterTargets adds the profile's extra targets to the target table.
func (p *Profile) RegisterTargets() error {
	for _, s := range p.Targets {
		if err := target.Register(s); err != nil {
			return errors.Wrapf(err, "in %s", p.Path)
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Locate finds the profile to load.  An explicit path wins, then the path in
// the CFGC_CONFIG environment variable, then cfgc.toml in the working
// directory.  The boolean is false when there is no profile, which is not an
// error unless a path was named explicitly.
func Locate(explicit string) (string, bool, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", false, err
		}

		return explicit, true, nil
	}

	if envPath, ok := os.LookupEnv(common.ConfigEnvVar); ok && envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", false, errors.Wrapf(err, "%s names a missing profile", common.ConfigEnvVar)
		}

		return envPath, true, nil
	}

	if _, err := os.Stat(common.ConfigFileName); err == nil {
		return common.ConfigFileName, true, nil
	}

	return "", false, nil
}

// Init writes a default profile into dir.  It refuses to replace an existing
// profile.
func Init(dir string) (string, error) {
	path := filepath.Join(dir, common.ConfigFileName)

	_, err := os.Stat(path)
	if err == nil {
		return path, errors.Errorf("%s already exists", path)
	}

	if !os.IsNotExist(err) {
		return path, errors.Wrap(err, "profile file error")
	}

	def := Default()

	f, err := os.Create(path)
	if err != nil {
		return path, errors.Wrap(err, "error creating profile file")
	}
	defer f.Close()

	tpf := &tomlProfileFile{
		Codegen: &tomlCodegen{
			Target:   def.Target,
			Output:   def.Output,
			LogLevel: def.LogLevel,
		},
	}

	if err := toml.NewEncoder(f).Encode(tpf); err != nil {
		return path, errors.Wrap(err, "error encoding TOML")
	}

	return path, nil
}
