package common

// CfgcVersion is the current code generator version as a string.
const CfgcVersion string = "0.3.0"

// ConfigFileName is the name of the optional code generator profile.
const ConfigFileName string = "cfgc.toml"

// ConfigEnvVar is the environment variable that may point at a profile
// outside the working directory.
const ConfigEnvVar string = "CFGC_CONFIG"

// IRFileExt is the file extension for textual LLVM IR.
const IRFileExt string = ".ll"

// AsmFileExt is the file extension for generated assembly.
const AsmFileExt string = ".s"

// ObjFileExt is the file extension for generated relocatable objects.
const ObjFileExt string = ".o"

// StdoutPath is the output path that stands for standard output.
const StdoutPath string = "-"
