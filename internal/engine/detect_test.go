package engine_test

import (
	"testing"

	"reliquary/internal/engine"
)

func TestDetectSingleEngineFolders(t *testing.T) {
	cases := []struct {
		name  string
		paths []string
		want  engine.Detection
	}{
		{
			name:  "masked engine by marker extension",
			paths: []string{"www/img/pictures/andrew.k9a", "www/data/map001.json"},
			want:  engine.Detection{Engine: engine.TagTCOAAL, AssetRoot: "www/", Encrypted: true},
		},
		{
			name:  "masked engine by probe path",
			paths: []string{"www/img/system/window.k9a"},
			want:  engine.Detection{Engine: engine.TagTCOAAL, AssetRoot: "www/", Encrypted: true},
		},
		{
			name:  "rgssad archive",
			paths: []string{"game.rgssad", "game.exe"},
			want:  engine.Detection{Engine: engine.TagRMXP, Encrypted: true},
		},
		{
			name:  "rgss2a archive",
			paths: []string{"game.rgss2a", "game.exe"},
			want:  engine.Detection{Engine: engine.TagRMVX, Encrypted: true},
		},
		{
			name:  "rgss3a archive",
			paths: []string{"game.rgss3a"},
			want:  engine.Detection{Engine: engine.TagRMVXAce, Encrypted: true},
		},
		{
			name:  "encrypted mv tree",
			paths: []string{"www/img/pictures/title.rpgmvp", "www/data/system.json"},
			want:  engine.Detection{Engine: engine.TagRMMVCrypt, AssetRoot: "www/", Encrypted: true},
		},
		{
			name:  "plain mv tree",
			paths: []string{"www/data/system.json", "www/img/pictures/title.png"},
			want:  engine.Detection{Engine: engine.TagRMMV, AssetRoot: "www/"},
		},
		{
			name:  "encrypted mz tree",
			paths: []string{"img/pictures/title.png_", "data/system.json"},
			want:  engine.Detection{Engine: engine.TagRMMZCrypt, Encrypted: true},
		},
		{
			name:  "plain mz tree",
			paths: []string{"data/system.json", "js/rmmz_core.js"},
			want:  engine.Detection{Engine: engine.TagRMMZ},
		},
		{
			name:  "2003 ledger pair",
			paths: []string{"rpg_rt.ldb", "rpg_rt.lmt", "charset/hero.png"},
			want:  engine.Detection{Engine: engine.TagRM2003},
		},
		{
			name:  "bare system config falls back to mz",
			paths: []string{"data/system.json"},
			want:  engine.Detection{Engine: engine.TagRMMZ},
		},
		{
			name:  "nothing recognizable",
			paths: []string{"readme.txt", "assets/logo.png"},
			want:  engine.Detection{Engine: engine.TagAuto},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := engine.Detect(tc.paths); got != tc.want {
				t.Fatalf("Detect = %+v, want %+v", got, tc.want)
			}
		})
	}
}

// Folders matching several heuristics must resolve by rule order, not
// specificity.
func TestDetectPriorityOrder(t *testing.T) {
	cases := []struct {
		name  string
		paths []string
		want  engine.Tag
	}{
		{
			name:  "rgssad beats mv tree",
			paths: []string{"game.rgssad", "www/data/system.json", "www/img/pictures/a.rpgmvp"},
			want:  engine.TagRMXP,
		},
		{
			name:  "marker extension beats every archive",
			paths: []string{"www/img/a.k9a", "game.rgssad", "game.rgss3a"},
			want:  engine.TagTCOAAL,
		},
		{
			name:  "encrypted mv beats plain mv",
			paths: []string{"www/data/system.json", "www/audio/bgm/theme.rpgmvo"},
			want:  engine.TagRMMVCrypt,
		},
		{
			name:  "mz encrypted extension beats plain mz config",
			paths: []string{"data/system.json", "js/rmmz_core.js", "audio/bgm/theme.ogg_"},
			want:  engine.TagRMMZCrypt,
		},
		{
			name:  "rgss2a beats rgss3a by order",
			paths: []string{"game.rgss2a", "game.rgss3a"},
			want:  engine.TagRMVX,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := engine.Detect(tc.paths); got.Engine != tc.want {
				t.Fatalf("Detect = %s, want %s", got.Engine, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if tag, err := engine.Parse("rmvxace"); err != nil || tag != engine.TagRMVXAce {
		t.Fatalf("Parse(rmvxace) = %s, %v", tag, err)
	}
	if tag, err := engine.Parse(""); err != nil || tag != engine.TagAuto {
		t.Fatalf("Parse(empty) = %s, %v", tag, err)
	}
	if _, err := engine.Parse("rpgmaker95"); err == nil {
		t.Fatal("expected error for unknown engine")
	}
}
