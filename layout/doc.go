// Package layout computes native memory layouts for types described with
// wit.
//
// Every native value type (QString, QColor, ...) and every native object's
// property storage is declared as a wit type. The calculator derives size,
// alignment and record field offsets from it, so the Go side and the native
// side agree on where each field lives.
//
// # Layout Rules
//
//   - Primitives: size equals alignment (u8=1, u32=4, u64=8, etc.)
//   - Records: fields laid out sequentially with padding for alignment
//   - Tuples: as records with positional fields
//   - Enums: smallest discriminant that fits the case count
//
// # Usage
//
//	c := layout.NewCalculator()
//	info := c.Calculate(objectType)
//	// info.Size, info.Align, info.Fields available
package layout
