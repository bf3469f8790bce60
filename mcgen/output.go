package mcgen

import "cfgc/common"

// OutputFile returns the path DumpCode writes for stem.  The stem `-` means
// standard output, which only assembly can go to: object code for `-` lands
// in `out.o` instead.
func OutputFile(stem string, asm bool) string {
	if stem == common.StdoutPath {
		if asm {
			return common.StdoutPath
		}

		return "out" + common.ObjFileExt
	}

	if asm {
		return stem + common.AsmFileExt
	}

	return stem + common.ObjFileExt
}
