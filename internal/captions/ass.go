package captions

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Rendering modes.
const (
	ModeWord    = "word"
	ModeKaraoke = "karaoke"
)

// Style controls caption appearance.
type Style struct {
	Mode         string
	Font         string
	FontSize     int
	Bold         bool
	Color        string
	AccentColor  string
	OutlineColor string
	OutlineWidth int
	MarginV      int
	Width        int
	Height       int
	WordsPerLine int
}

type line struct {
	Start float64
	End   float64
	Words []Event
}

// RenderASS renders events as an ASS script. Overlays sit on a layer above
// the words in their own top-aligned style.
func RenderASS(events []Event, style Style, overlays ...Overlay) string {
	var b strings.Builder
	b.WriteString(assHeader(style))
	b.WriteString("\n\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, ov := range overlays {
		writeDialogue(&b, 1, "Overlay", ov.Start, ov.End, "{\\fad(200,200)}"+sanitizeASS(ov.Text))
	}

	if style.Mode == ModeKaraoke {
		for _, ln := range packWords(events, style.WordsPerLine) {
			writeDialogue(&b, 0, "Caption", ln.Start, ln.End, karaokeText(ln, style))
		}
		return b.String()
	}

	for _, ev := range events {
		writeDialogue(&b, 0, "Caption", ev.Start, ev.End, wordText(ev, style))
	}
	return b.String()
}

// WriteASS renders events and overlays to path.
func WriteASS(path string, events []Event, style Style, overlays ...Overlay) error {
	if err := os.WriteFile(path, []byte(RenderASS(events, style, overlays...)), 0o644); err != nil {
		return fmt.Errorf("write captions: %w", err)
	}
	return nil
}

func writeDialogue(b *strings.Builder, layer int, styleName string, start, end float64, text string) {
	fmt.Fprintf(b, "Dialogue: %d,%s,%s,%s,,0,0,0,,%s\n", layer, assTime(start), assTime(end), styleName, text)
}

func wordText(ev Event, style Style) string {
	text := sanitizeASS(ev.Word)
	if !ev.Highlight {
		return text
	}
	// Keywords pop in slightly larger and settle.
	return fmt.Sprintf("{\\c%s\\fscx120\\fscy120\\t(0,120,\\fscx100\\fscy100)}%s", overrideColor(style.AccentColor), text)
}

func karaokeText(ln line, style Style) string {
	var b strings.Builder
	for i, w := range ln.Words {
		next := w.End
		if i+1 < len(ln.Words) {
			next = ln.Words[i+1].Start
		}
		cs := int(math.Round((next - w.Start) * 100))
		if cs < 1 {
			cs = 1
		}
		if w.Highlight {
			fmt.Fprintf(&b, "{\\k%d\\1c%s}%s{\\1c%s}", cs, overrideColor(style.AccentColor), sanitizeASS(w.Word), overrideColor(style.Color))
		} else {
			fmt.Fprintf(&b, "{\\k%d}%s", cs, sanitizeASS(w.Word))
		}
		if i < len(ln.Words)-1 {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// packWords groups consecutive events into display lines. A line breaks at the
// word budget, at a character budget sized for portrait output, or at a
// section boundary.
func packWords(events []Event, wordBudget int) []line {
	if len(events) == 0 {
		return nil
	}
	if wordBudget <= 0 {
		wordBudget = 3
	}
	const charBudget = 24

	var out []line
	cur := line{Start: events[0].Start}
	curLen := 0
	for _, ev := range events {
		wl := len([]rune(ev.Word))
		nextLen := curLen + wl
		if curLen > 0 {
			nextLen++
		}
		if len(cur.Words) > 0 && (len(cur.Words) >= wordBudget || nextLen > charBudget || cur.Words[0].SectionID != ev.SectionID) {
			cur.End = cur.Words[len(cur.Words)-1].End
			out = append(out, cur)
			cur = line{Start: ev.Start}
			curLen = 0
			nextLen = wl
		}
		cur.Words = append(cur.Words, ev)
		curLen = nextLen
	}
	cur.End = cur.Words[len(cur.Words)-1].End
	return append(out, cur)
}

func assHeader(style Style) string {
	bold := 0
	if style.Bold {
		bold = -1
	}
	primary := assColor(style.Color, 0)
	secondary := primary
	if style.Mode == ModeKaraoke {
		secondary = assColor(style.Color, 0x80)
	}
	return fmt.Sprintf(`[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
WrapStyle: 0
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Caption,%s,%d,%s,%s,%s,&H64000000,%d,0,0,0,100,100,0,0,1,%d,0,2,60,60,%d,1
Style: Overlay,%s,%d,%s,%s,%s,&H80000000,%d,0,0,0,100,100,0,0,3,%d,0,8,80,80,%d,1`,
		style.Width, style.Height,
		style.Font, style.FontSize, primary, secondary, assColor(style.OutlineColor, 0),
		bold, style.OutlineWidth, style.MarginV,
		style.Font, overlaySize(style.FontSize), primary, primary, assColor(style.AccentColor, 0x40),
		bold, max(style.OutlineWidth/2, 1), overlayMargin(style.Height))
}

// overlaySize keeps block text smaller than the single-word captions.
func overlaySize(captionSize int) int {
	return max(captionSize*3/5, 1)
}

// overlayMargin sets overlays near the top of the frame.
func overlayMargin(height int) int {
	return height / 8
}

// assColor converts #RRGGBB to &HAABBGGRR. Unparseable values become white.
func assColor(hex string, alpha uint8) string {
	r, g, bl, ok := parseHex(hex)
	if !ok {
		r, g, bl = 0xFF, 0xFF, 0xFF
	}
	return fmt.Sprintf("&H%02X%02X%02X%02X", alpha, bl, g, r)
}

// overrideColor converts #RRGGBB to the inline &HBBGGRR& form.
func overrideColor(hex string) string {
	r, g, bl, ok := parseHex(hex)
	if !ok {
		r, g, bl = 0xFF, 0xFF, 0xFF
	}
	return fmt.Sprintf("&H%02X%02X%02X&", bl, g, r)
}

func parseHex(hex string) (r, g, b uint8, ok bool) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

func assTime(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	cs := int(math.Round(sec * 100))
	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}
