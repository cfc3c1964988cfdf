package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/qtbridge/bridge"
	"github.com/wippyai/qtbridge/errors"
	"github.com/wippyai/qtbridge/qtypes"
)

// setProperty parses text as the Go value of the property's native type and
// writes it through the native setter.
func setProperty(w *bridge.Wrapper, index int, ops qtypes.Ops, text string) error {
	switch ops.Name() {
	case qtypes.Int32.Name():
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
		if err != nil {
			return invalidValue(ops, text, err)
		}
		return bridge.Set(w, index, qtypes.Int32, int32(v))
	case qtypes.Bool.Name():
		v, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return invalidValue(ops, text, err)
		}
		return bridge.Set(w, index, qtypes.Bool, v)
	case qtypes.Float64.Name():
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return invalidValue(ops, text, err)
		}
		return bridge.Set(w, index, qtypes.Float64, v)
	case qtypes.String.Name():
		return bridge.Set(w, index, qtypes.String, text)
	case qtypes.ColorCodec.Name():
		c, ok := qtypes.ParseColor(text)
		if !ok {
			return invalidValue(ops, text, nil)
		}
		return bridge.Set(w, index, qtypes.ColorCodec, c)
	case qtypes.PointFCodec.Name():
		x, y, err := parsePair(text)
		if err != nil {
			return invalidValue(ops, text, err)
		}
		return bridge.Set(w, index, qtypes.PointFCodec, qtypes.NewQPointF(x, y))
	case qtypes.SizeFCodec.Name():
		width, height, err := parsePair(text)
		if err != nil {
			return invalidValue(ops, text, err)
		}
		return bridge.Set(w, index, qtypes.SizeFCodec, qtypes.NewQSizeF(width, height))
	case qtypes.VariantCodec.Name():
		v, ok := qtypes.ParseVariant(text)
		if !ok {
			return invalidValue(ops, text, nil)
		}
		return bridge.Set(w, index, qtypes.VariantCodec, v)
	}
	return errors.Unsupported(errors.PhaseAssign, "editing "+ops.Name()+" properties")
}

// formatProperty renders the current value of a property. Values Go cannot
// represent render as a marker instead of a guess.
func formatProperty(r bridge.Reader, index int, ops qtypes.Ops) string {
	const absent = "<unrepresentable>"
	switch ops.Name() {
	case qtypes.Int32.Name():
		v, ok := bridge.Get(r, index, qtypes.Int32)
		return formatRead(v, ok)
	case qtypes.Bool.Name():
		v, ok := bridge.Get(r, index, qtypes.Bool)
		return formatRead(v, ok)
	case qtypes.Float64.Name():
		v, ok := bridge.Get(r, index, qtypes.Float64)
		return formatRead(v, ok)
	case qtypes.String.Name():
		v, err := qtypes.QStringAt(r.Slot(index)).Decode()
		if err != nil {
			return absent + " " + err.Error()
		}
		return strconv.Quote(v)
	case qtypes.ColorCodec.Name():
		v, ok := bridge.Get(r, index, qtypes.ColorCodec)
		return formatRead(v, ok)
	case qtypes.PointFCodec.Name():
		v, ok := bridge.Get(r, index, qtypes.PointFCodec)
		if !ok {
			return absent
		}
		return formatPair(v.X, v.Y)
	case qtypes.SizeFCodec.Name():
		v, ok := bridge.Get(r, index, qtypes.SizeFCodec)
		if !ok {
			return absent
		}
		return formatPair(v.Width, v.Height)
	case qtypes.VariantCodec.Name():
		v, ok := bridge.Get(r, index, qtypes.VariantCodec)
		if !ok {
			if u, isUnsupported := v.(qtypes.VariantUnsupported); isUnsupported {
				return absent + " " + u.String()
			}
			return absent
		}
		return v.String()
	}
	return "<" + ops.Name() + ">"
}

func formatRead[M any](v M, ok bool) string {
	if !ok {
		return "<unrepresentable>"
	}
	return fmt.Sprint(v)
}

func parsePair(text string) (float64, float64, error) {
	a, b, found := strings.Cut(text, ",")
	if !found {
		return 0, 0, fmt.Errorf("expected x,y")
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func formatPair(a, b float64) string {
	return strconv.FormatFloat(a, 'g', -1, 64) + "," + strconv.FormatFloat(b, 'g', -1, 64)
}

func invalidValue(ops qtypes.Ops, text string, cause error) error {
	b := errors.New(errors.PhaseAssign, errors.KindInvalidInput).
		NativeType(ops.Name()).
		Value(text).
		Detail("cannot parse %q as %s", text, ops.Name())
	if cause != nil {
		b = b.Cause(cause)
	}
	return b.Build()
}
