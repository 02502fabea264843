package translate

import "strings"

// RegionSegment replaces every /<marker>/ segment with the active region.
// PS2-era mods use "jp" as their region directory.
func RegionSegment(marker string) Rule {
	needle := "/" + marker + "/"
	return Rule{
		Name: "region-segment",
		Trigger: func(path string) bool {
			return strings.Contains(path, needle)
		},
		Rewrite: func(path, region string) string {
			return strings.ReplaceAll(path, needle, "/"+region+"/")
		},
	}
}

// RegionSubdir inserts a region directory below a top-level content
// directory, for paths exactly one level deep: ard/x.ard becomes
// ard/<region>/x.ard.
func RegionSubdir(dir string) Rule {
	return Rule{
		Name: "region-subdir",
		Trigger: func(path string) bool {
			segments := strings.Split(path, "/")
			return len(segments) == 2 && segments[0] == dir
		},
		Rewrite: func(path, region string) string {
			return dir + "/" + region + "/" + strings.TrimPrefix(path, dir+"/")
		},
	}
}

// CollapseDir drops the intermediate segment of paths exactly two levels
// below dir: map/jp/al00.map becomes map/al00.map. Some titles encode the
// region of this content only through directory nesting.
func CollapseDir(dir string) Rule {
	return Rule{
		Name: "collapse-dir",
		Trigger: func(path string) bool {
			segments := strings.Split(path, "/")
			return len(segments) == 3 && segments[0] == dir
		},
		Rewrite: func(path, _ string) string {
			segments := strings.Split(path, "/")
			return dir + "/" + segments[len(segments)-1]
		},
	}
}

// LanguageSuffix replaces a fixed language suffix with the active region:
// with prefix ".a." and lang "fm", x.a.fm becomes x.a.<region>.
func LanguageSuffix(prefix, lang string) Rule {
	suffix := prefix + lang
	return Rule{
		Name: "language-suffix",
		Trigger: func(path string) bool {
			return strings.HasSuffix(path, suffix)
		},
		Rewrite: func(path, region string) string {
			return strings.TrimSuffix(path, suffix) + prefix + region
		},
	}
}
