// Package lang holds the fixed language catalog and the left/right pair
// selection rules for a translation session.
package lang

import "errors"

// ErrInvalidSelection is returned when a selection would make both sides
// of the pair the same language.
var ErrInvalidSelection = errors.New("language already selected on the other side")

type Language struct {
	Code  string
	Label string
	Flag  string
}

// Catalog is the reference list shown in both language columns.
var Catalog = []Language{
	{Code: "english", Label: "Am English", Flag: "🇺🇸"},
	{Code: "spanish", Label: "LA Spanish", Flag: "🇲🇽"},
	{Code: "eu_spanish", Label: "Eu Spanish", Flag: "🇪🇸"},
	{Code: "french", Label: "French", Flag: "🇫🇷"},
	{Code: "german", Label: "German", Flag: "🇩🇪"},
	{Code: "italian", Label: "Italian", Flag: "🇮🇹"},
	{Code: "portuguese", Label: "Portuguese", Flag: "🇵🇹"},
	{Code: "br_portuguese", Label: "Br Portuguese", Flag: "🇧🇷"},
	{Code: "dutch", Label: "Dutch", Flag: "🇳🇱"},
	{Code: "swedish", Label: "Swedish", Flag: "🇸🇪"},
	{Code: "finnish", Label: "Finnish", Flag: "🇫🇮"},
	{Code: "norwegian", Label: "Norwegian", Flag: "🇳🇴"},
	{Code: "russian", Label: "Russian", Flag: "🇷🇺"},
	{Code: "polish", Label: "Polish", Flag: "🇵🇱"},
	{Code: "arabic", Label: "Arabic", Flag: "🇸🇦"},
	{Code: "chinese", Label: "Chinese", Flag: "🇨🇳"},
	{Code: "japanese", Label: "Japanese", Flag: "🇯🇵"},
	{Code: "korean", Label: "Korean", Flag: "🇰🇷"},
	{Code: "hindi", Label: "Hindi", Flag: "🇮🇳"},
	{Code: "turkish", Label: "Turkish", Flag: "🇹🇷"},
	{Code: "vietnamese", Label: "Vietnamese", Flag: "🇻🇳"},
	{Code: "indonesian", Label: "Indonesian", Flag: "🇮🇩"},
	{Code: "romanian", Label: "Romanian", Flag: "🇷🇴"},
	{Code: "thai", Label: "Thai", Flag: "🇹🇭"},
	{Code: "filipino", Label: "Filipino", Flag: "🇵🇭"},
	{Code: "bulgarian", Label: "Bulgarian", Flag: "🇧🇬"},
	{Code: "ukrainian", Label: "Ukrainian", Flag: "🇺🇦"},
	{Code: "tamil", Label: "Tamil", Flag: "🇮🇳"},
}

func ByCode(code string) (Language, bool) {
	for _, l := range Catalog {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}

// Pair is the two selected session languages. Left is conventionally the
// source when the left speaker talks, and vice versa.
type Pair struct {
	Left  Language
	Right Language
}

// DefaultPair returns the first two catalog entries.
func DefaultPair() Pair {
	return Pair{Left: Catalog[0], Right: Catalog[1]}
}

// SelectLeft replaces the left language. The proposed language must differ
// from the right one; on rejection the pair is unchanged.
func (p *Pair) SelectLeft(l Language) error {
	if l.Code == p.Right.Code {
		return ErrInvalidSelection
	}
	p.Left = l
	return nil
}

func (p *Pair) SelectRight(l Language) error {
	if l.Code == p.Left.Code {
		return ErrInvalidSelection
	}
	p.Right = l
	return nil
}

func (p *Pair) Swap() {
	p.Left, p.Right = p.Right, p.Left
}

// Source returns the source/target codes for a submission originating on
// the given side; left speaks left-to-right, right speaks right-to-left.
func (p Pair) Source(leftSide bool) (source, target Language) {
	if leftSide {
		return p.Left, p.Right
	}
	return p.Right, p.Left
}
