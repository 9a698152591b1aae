package chat

import (
	"strings"

	"github.com/unixblacksteel/mindmap/pkg/errors"
)

// Mode selects how a prompt is handled.
type Mode string

const (
	ModeStudy    Mode = "STUDY"
	ModeResearch Mode = "RESEARCH"
	ModeSummary  Mode = "SUMMARY"
	ModeVisual   Mode = "VISUAL"
	ModeMindMap  Mode = "MINDMAP"
)

// ModeConfig is the presentation and prompt modifier of a mode.
type ModeConfig struct {
	Label    string
	Icon     string
	Modifier string
}

var modeConfigs = map[Mode]ModeConfig{
	ModeStudy: {
		Label:    "وضعية الدراسة",
		Icon:     "📚",
		Modifier: "اشرح هذا المفهوم كأستاذ جامعي خبير، بأسلوب متدرج من السهل إلى الصعب. استخدم أمثلة واقعية.",
	},
	ModeResearch: {
		Label:    "وضعية البحث",
		Icon:     "🔍",
		Modifier: "قدم بحثاً مفصلاً ومنظماً حول هذا الموضوع. اذكر المصادر إن أمكن، واستخدم هيكلية أكاديمية.",
	},
	ModeSummary: {
		Label:    "وضعية التلخيص",
		Icon:     "📝",
		Modifier: "لخص النص أو المفهوم التالي في نقاط رئيسية واضحة ومباشرة. ركز على الجوهر.",
	},
	ModeVisual: {
		Label:    "توليد صور",
		Icon:     "🎨",
		Modifier: "Generate an image description.",
	},
	ModeMindMap: {
		Label:    "خريطة ذهنية",
		Icon:     "🧠",
		Modifier: "Create a hierarchical JSON structure for a mind map.",
	},
}

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModeStudy, ModeResearch, ModeSummary, ModeVisual, ModeMindMap}
}

// Config returns the mode's configuration. Unknown modes get STUDY's.
func (m Mode) Config() ModeConfig {
	if c, ok := modeConfigs[m]; ok {
		return c
	}
	return modeConfigs[ModeStudy]
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modeConfigs[m]
	return ok
}

// String returns the icon and label, e.g. "🧠 خريطة ذهنية".
func (m Mode) String() string {
	c := m.Config()
	return c.Icon + " " + c.Label
}

// ParseMode accepts a mode name in any case. Empty means STUDY.
func ParseMode(s string) (Mode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return ModeStudy, nil
	}
	if m := Mode(s); m.Valid() {
		return m, nil
	}
	return "", errors.New(errors.ErrCodeInvalidMode, "unknown mode %q (want study, research, summary, visual or mindmap)", s)
}
