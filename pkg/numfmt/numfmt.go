// Package numfmt turns numbers into display strings with a fixed number of
// decimal places and configurable decimal and thousands separators, and
// parses such strings back.
//
// Format codes ("#,##0.00" style) are tokenized by [github.com/xuri/nfp];
// this package renders the token stream with the caller's separators.
package numfmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/nfp"
)

// Formatter renders a number with decimals fraction digits, the given
// decimal separator and an optional thousands separator.
type Formatter interface {
	Format(value float64, decimals int, decimalSep, thousandsSep string) string
}

// Func adapts an ordinary function to the Formatter interface
type Func func(value float64, decimals int, decimalSep, thousandsSep string) string

// Format calls f
func (f Func) Format(value float64, decimals int, decimalSep, thousandsSep string) string {
	return f(value, decimals, decimalSep, thousandsSep)
}

// CodeFormatter renders numbers through parsed format codes. Parsed codes
// are cached, so one instance can be shared by many fields.
type CodeFormatter struct {
	mu    sync.RWMutex
	codes map[string][]nfp.Section
}

var defaultFormatter = NewCodeFormatter()

// Default returns the shared CodeFormatter
func Default() Formatter {
	return defaultFormatter
}

// NewCodeFormatter creates a formatter with an empty code cache
func NewCodeFormatter() *CodeFormatter {
	return &CodeFormatter{
		codes: make(map[string][]nfp.Section),
	}
}

// FormatCode builds the format code for the given precision, e.g.
// FormatCode(2, true) is "#,##0.00".
func FormatCode(decimals int, grouping bool) string {
	code := "0"
	if grouping {
		code = "#,##0"
	}
	if decimals > 0 {
		code += "." + strings.Repeat("0", decimals)
	}
	return code
}

// PercentCode is FormatCode with a percent token: the value is scaled by
// 100 and rendered with a '%' suffix.
func PercentCode(decimals int, grouping bool) string {
	return FormatCode(decimals, grouping) + "%"
}

// CodeRenderer renders numbers through an explicit format code
type CodeRenderer interface {
	FormatWithCode(value float64, code, decimalSep, thousandsSep string) string
}

// Format implements Formatter
func (f *CodeFormatter) Format(value float64, decimals int, decimalSep, thousandsSep string) string {
	if decimals < 0 {
		decimals = 0
	}
	return f.FormatWithCode(value, FormatCode(decimals, thousandsSep != ""), decimalSep, thousandsSep)
}

// FormatWithCode renders value through code. The code's '.' and ','
// tokens stand for decimalSep and thousandsSep; a grouping code with an
// empty thousandsSep groups with ','.
func (f *CodeFormatter) FormatWithCode(value float64, code, decimalSep, thousandsSep string) string {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	if decimalSep == "" {
		decimalSep = "."
	}
	if thousandsSep == "" {
		thousandsSep = ","
	}
	sections := f.sections(code)
	if len(sections) == 0 {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return render(value, selectSection(sections, value), len(sections) > 1, decimalSep, thousandsSep)
}

// sections returns the cached token sections of code
func (f *CodeFormatter) sections(code string) []nfp.Section {
	f.mu.RLock()
	s, ok := f.codes[code]
	f.mu.RUnlock()
	if ok {
		return s
	}

	ps := nfp.NumberFormatParser()
	s = ps.Parse(code)

	f.mu.Lock()
	f.codes[code] = s
	f.mu.Unlock()
	return s
}

// selectSection picks the section for the sign of val: one section covers
// every value, the second is for negatives and the third for zero.
func selectSection(sections []nfp.Section, val float64) nfp.Section {
	switch {
	case len(sections) == 1:
		return sections[0]
	case len(sections) == 2:
		if val < 0 {
			return sections[1]
		}
		return sections[0]
	case val > 0:
		return sections[0]
	case val < 0:
		return sections[1]
	default:
		return sections[2]
	}
}

// layout is what a section's tokens ask for
type layout struct {
	percent   bool
	grouping  bool
	decimal   bool
	intZeros  int
	decZeros  int
	decHashes int
}

func scan(sec nfp.Section) layout {
	var l layout
	afterDecimal := false
	for _, tok := range sec.Items {
		switch tok.TType {
		case nfp.TokenTypePercent:
			l.percent = true
		case nfp.TokenTypeThousandsSeparator:
			l.grouping = true
		case nfp.TokenTypeDecimalPoint:
			l.decimal = true
			afterDecimal = true
		case nfp.TokenTypeZeroPlaceHolder:
			if afterDecimal {
				l.decZeros += len(tok.TValue)
			} else {
				l.intZeros += len(tok.TValue)
			}
		case nfp.TokenTypeHashPlaceHolder:
			if afterDecimal {
				l.decHashes += len(tok.TValue)
			}
		}
	}
	return l
}

// render formats val by walking the tokens of sec. A negative value gets a
// minus sign only when the code has no section of its own for negatives.
func render(val float64, sec nfp.Section, signedSections bool, decimalSep, thousandsSep string) string {
	l := scan(sec)

	abs := math.Abs(val)
	if l.percent {
		abs *= 100
	}

	var intStr, fracStr string
	if l.decimal {
		formatted := strconv.FormatFloat(abs, 'f', l.decZeros+l.decHashes, 64)
		intStr, fracStr, _ = strings.Cut(formatted, ".")
		if l.decHashes > 0 {
			fracStr = strings.TrimRight(fracStr, "0")
			for len(fracStr) < l.decZeros {
				fracStr += "0"
			}
		}
	} else {
		intStr = strconv.FormatFloat(abs, 'f', 0, 64)
	}

	negative := val < 0 && !allZero(intStr+fracStr)

	for len(intStr) < l.intZeros {
		intStr = "0" + intStr
	}
	if l.grouping {
		intStr = group(intStr, thousandsSep)
	}

	var sb strings.Builder
	if negative && !signedSections {
		sb.WriteByte('-')
	}
	intDone, fracDone, afterDecimal := false, false, false
	for _, tok := range sec.Items {
		switch tok.TType {
		case nfp.TokenTypeLiteral:
			sb.WriteString(tok.TValue)
		case nfp.TokenTypeDecimalPoint:
			if fracStr != "" {
				sb.WriteString(decimalSep)
			}
			afterDecimal = true
		case nfp.TokenTypeZeroPlaceHolder, nfp.TokenTypeHashPlaceHolder:
			if afterDecimal && !fracDone {
				sb.WriteString(fracStr)
				fracDone = true
			} else if !afterDecimal && !intDone {
				sb.WriteString(intStr)
				intDone = true
			}
		case nfp.TokenTypePercent:
			sb.WriteByte('%')
		}
	}
	if !intDone && !afterDecimal {
		sb.WriteString(intStr)
	}
	return sb.String()
}

// group inserts sep every three digits from the right
func group(digits, sep string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	b.Grow(n + (n/3)*len(sep))
	rem := n % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(digits[:rem])
	for i := rem; i < n; i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func allZero(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return false
		}
	}
	return true
}

// Parse reverses Format: it strips thousands separators, maps the decimal
// separator back to '.', and reports a trailing percent sign. The returned
// value is the displayed magnitude; it is not divided by 100.
func Parse(text, decimalSep, thousandsSep string) (value float64, percent bool, err error) {
	s := strings.TrimSpace(text)
	s, percent = strings.CutSuffix(s, "%")
	if thousandsSep != "" {
		s = strings.ReplaceAll(s, thousandsSep, "")
	}
	if decimalSep != "" && decimalSep != "." {
		s = strings.ReplaceAll(s, decimalSep, ".")
	}
	if s == "" {
		return 0, percent, fmt.Errorf("parse %q: no digits", text)
	}
	value, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse %q: %w", text, err)
	}
	return value, percent, nil
}
