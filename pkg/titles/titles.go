// Package titles is the static registry of supported titles.
//
// Each title is one case of the closed TitleKind enum and carries its
// package list, its path rule table and its package directory locator as
// data. Callers never branch on the title themselves.
package titles

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/khbuild/pkg/errors"
	"github.com/arthur-debert/khbuild/pkg/translate"
	"github.com/arthur-debert/khbuild/pkg/types"
	"github.com/rs/zerolog"
)

// TitleKind identifies one supported title
type TitleKind int

const (
	KH1 TitleKind = iota
	KH2
	BBS
	KH3D
	ReCOM
	Movies
)

// DefaultRegion is used when no region is configured
const DefaultRegion = "us"

// DefaultTitle is selected when no title is configured
const DefaultTitle = KH2

// Regions lists the region codes a run may select
var Regions = []string{"jp", "us", "uk", "it", "sp", "gr", "fr"}

// Locator maps the game's Image/en directory to the directory that
// actually holds a title's packages
type Locator func(imageDir string) string

// Profile is the immutable description of one title
type Profile struct {
	Kind TitleKind
	// Key is the identifier users select the title with
	Key string
	// Name is the internal name: package map key and package file prefix
	Name string
	// DisplayName is shown in listings
	DisplayName   string
	RegionDefault string
	Packages      []types.PackageID
	Rules         []translate.Rule
	locator       Locator
	// ExtractName is the directory extracted files are placed under
	ExtractName string
}

func identity(imageDir string) string {
	return imageDir
}

func pkgs(names ...string) []types.PackageID {
	ids := make([]types.PackageID, len(names))
	for i, n := range names {
		ids[i] = types.PackageID(n)
	}
	return ids
}

var registry = []*Profile{
	{
		Kind:          KH1,
		Key:           "kh1",
		Name:          "kh1",
		DisplayName:   "Kingdom Hearts Final Mix",
		RegionDefault: DefaultRegion,
		Packages:      pkgs("kh1_first", "kh1_second", "kh1_third", "kh1_fourth", "kh1_fifth"),
		locator:       identity,
		ExtractName:   "kh1",
	},
	{
		Kind:          KH2,
		Key:           "kh2",
		Name:          "kh2",
		DisplayName:   "Kingdom Hearts II Final Mix",
		RegionDefault: DefaultRegion,
		Packages:      pkgs("kh2_first", "kh2_second", "kh2_third", "kh2_fourth", "kh2_fifth", "kh2_sixth"),
		// PS2-era mods address files with Japanese-release conventions
		Rules: []translate.Rule{
			translate.RegionSegment("jp"),
			translate.RegionSubdir("ard"),
			translate.CollapseDir("map"),
			translate.LanguageSuffix(".a.", "fm"),
		},
		locator:     identity,
		ExtractName: "kh2",
	},
	{
		Kind:          BBS,
		Key:           "bbs",
		Name:          "bbs",
		DisplayName:   "Birth by Sleep Final Mix",
		RegionDefault: DefaultRegion,
		Packages:      pkgs("bbs_first", "bbs_second", "bbs_third", "bbs_fourth"),
		locator:       identity,
		ExtractName:   "bbs",
	},
	{
		Kind:          KH3D,
		Key:           "kh3d",
		Name:          "kh3d",
		DisplayName:   "Dream Drop Distance HD",
		RegionDefault: DefaultRegion,
		Packages:      pkgs("kh3d_first", "kh3d_second", "kh3d_third", "kh3d_fourth"),
		// Shipped with the 2.8 release, installed next to kh_1.5_2.5
		locator: func(imageDir string) string {
			return filepath.Join(imageDir, "..", "..", "..", "KH_2.8", "Image", "en")
		},
		ExtractName: "ddd",
	},
	{
		Kind:          ReCOM,
		Key:           "Recom",
		Name:          "recom",
		DisplayName:   "Re:Chain of Memories",
		RegionDefault: DefaultRegion,
		Packages:      pkgs("Recom"),
		locator:       identity,
		ExtractName:   "recom",
	},
	{
		Kind:          Movies,
		Key:           "Movies",
		Name:          "mare",
		DisplayName:   "Theater mode movies",
		RegionDefault: DefaultRegion,
		Packages:      pkgs("Mare"),
		locator: func(imageDir string) string {
			return filepath.Join(imageDir, "..")
		},
		ExtractName: "mare",
	},
}

// Lookup returns the profile selected by id. Both the selection key and
// the internal name are accepted, case-insensitively.
func Lookup(id string) (*Profile, error) {
	for _, p := range registry {
		if strings.EqualFold(p.Key, id) || strings.EqualFold(p.Name, id) {
			return p, nil
		}
	}
	return nil, errors.Newf(errors.ErrUnknownTitle, "unknown title %q", id).
		WithDetail("title", id).
		WithDetail("available", Keys())
}

// All returns every profile in registry order
func All() []*Profile {
	out := make([]*Profile, len(registry))
	copy(out, registry)
	return out
}

// Keys returns the selection keys of all titles
func Keys() []string {
	keys := make([]string, len(registry))
	for i, p := range registry {
		keys[i] = p.Key
	}
	return keys
}

// String returns the title's selection key
func (k TitleKind) String() string {
	for _, p := range registry {
		if p.Kind == k {
			return p.Key
		}
	}
	return "unknown"
}

// Profile returns the registry entry for k
func (k TitleKind) Profile() *Profile {
	for _, p := range registry {
		if p.Kind == k {
			return p
		}
	}
	return nil
}

// PackageDir returns the directory holding the title's packages
func (p *Profile) PackageDir(imageDir string) string {
	if p.locator == nil {
		return imageDir
	}
	return p.locator(imageDir)
}

// HasPackage reports whether id belongs to the title
func (p *Profile) HasPackage(id types.PackageID) bool {
	for _, pkg := range p.Packages {
		if pkg == id {
			return true
		}
	}
	return false
}

// Translator returns a path translator for the title, checking existing
// files under modRoot through fs
func (p *Profile) Translator(fs types.FS, modRoot, region string, logger zerolog.Logger) *translate.Translator {
	if region == "" {
		region = p.RegionDefault
	}
	return translate.New(translate.Options{
		Rules:   p.Rules,
		Region:  region,
		ModRoot: modRoot,
		FS:      fs,
		Logger:  logger,
	})
}

// IsValidRegion reports whether region is a known region code
func IsValidRegion(region string) bool {
	for _, r := range Regions {
		if r == region {
			return true
		}
	}
	return false
}

// ValidateRegion returns an INVALID_INPUT error for unknown regions
func ValidateRegion(region string) error {
	if IsValidRegion(region) {
		return nil
	}
	return errors.Newf(errors.ErrInvalidInput, "unknown region %q", region).
		WithDetail("available", Regions)
}
