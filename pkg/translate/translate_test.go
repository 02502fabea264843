// pkg/translate/translate_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: afero memory filesystem
// PURPOSE: Test rule evaluation, the already-exists short circuit and
// remastered passthrough

package translate_test

import (
	"path"
	"testing"

	"github.com/arthur-debert/khbuild/pkg/filesystem"
	"github.com/arthur-debert/khbuild/pkg/translate"
	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modRoot = "/openkh/mod"

func fullRules() []translate.Rule {
	return []translate.Rule{
		translate.RegionSegment("jp"),
		translate.RegionSubdir("ard"),
		translate.CollapseDir("map"),
		translate.LanguageSuffix(".a.", "fm"),
	}
}

func newTranslator(t *testing.T, rules []translate.Rule, existing ...string) *translate.Translator {
	t.Helper()
	fs := filesystem.NewAferoFS(afero.NewMemMapFs())
	for _, rel := range existing {
		writeModFile(t, fs, rel)
	}
	return translate.New(translate.Options{
		Rules:   rules,
		Region:  "us",
		ModRoot: modRoot,
		FS:      fs,
	})
}

func writeModFile(t *testing.T, fs types.FS, rel string) {
	t.Helper()
	full := path.Join(modRoot, rel)
	require.NoError(t, fs.MkdirAll(path.Dir(full), 0755))
	require.NoError(t, fs.WriteFile(full, []byte(rel), 0644))
}

func TestTranslate_Rules(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "region_segment",
			raw:  "/msg/jp/sys.bar",
			want: "msg/us/sys.bar",
		},
		{
			name: "region_subdir_one_level",
			raw:  "/ard/al00.ard",
			want: "ard/us/al00.ard",
		},
		{
			name: "region_subdir_ignores_deeper_paths",
			raw:  "/ard/fr/al00.ard",
			want: "ard/fr/al00.ard",
		},
		{
			name: "collapse_map_two_levels",
			raw:  "/map/jp/al00.map",
			want: "map/al00.map",
		},
		{
			name: "language_suffix",
			raw:  "/obj/b_ex.a.fm",
			want: "obj/b_ex.a.us",
		},
		{
			name: "rules_chain_in_order",
			raw:  "/menu/jp/title.a.fm",
			want: "menu/us/title.a.us",
		},
		{
			name: "unmatched_path_only_normalized",
			raw:  "/data/battle.bin",
			want: "data/battle.bin",
		},
		{
			name: "path_without_leading_separator",
			raw:  "obj/P_EX100.mdlx",
			want: "obj/P_EX100.mdlx",
		},
		{
			name: "remastered_is_passthrough",
			raw:  "/remastered/ard/jp/al00.ard/-0.dds",
			want: "remastered/ard/jp/al00.ard/-0.dds",
		},
	}

	tr := newTranslator(t, fullRules())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Translate(tt.raw))
		})
	}
}

func TestTranslate_ExistingTargetKeepsOriginal(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		existing string
	}{
		{name: "region_segment", raw: "/msg/jp/sys.bar", existing: "msg/us/sys.bar"},
		{name: "region_subdir", raw: "/ard/al00.ard", existing: "ard/us/al00.ard"},
		{name: "collapse_map", raw: "/map/fr/al00.map", existing: "map/al00.map"},
		{name: "language_suffix", raw: "/obj/b_ex.a.fm", existing: "obj/b_ex.a.us"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTranslator(t, fullRules(), tt.existing)
			assert.Equal(t, translate.Normalize(tt.raw), tr.Translate(tt.raw))
		})
	}
}

func TestTranslate_TrivialTitle(t *testing.T) {
	tr := newTranslator(t, nil)

	for _, raw := range []string{"/msg/jp/sys.bar", "/ard/al00.ard", "/map/jp/al00.map", "/obj/b_ex.a.fm"} {
		assert.Equal(t, translate.Normalize(raw), tr.Translate(raw), raw)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a/b.bin", translate.Normalize("/a/b.bin"))
	assert.Equal(t, "a/b.bin", translate.Normalize(`\a\b.bin`))
	assert.Equal(t, "a/b.bin", translate.Normalize("a/b.bin"))
	assert.Equal(t, "/a/b.bin", translate.Normalize("//a/b.bin"))
}

func TestIsRemastered(t *testing.T) {
	assert.True(t, translate.IsRemastered("remastered/obj/x.dds"))
	assert.True(t, translate.IsRemastered("/obj/remastered/x.dds"))
	assert.False(t, translate.IsRemastered("obj/remastered_x.dds"))
	assert.False(t, translate.IsRemastered("obj/x.dds"))
}
