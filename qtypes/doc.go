// Package qtypes implements the value conversion contract between Go values
// and the native value types stored inside native objects.
//
// Each native type lives in a Slot: an address in native memory plus the
// memory it belongs to. Values are built in place, read back into Go values,
// mutated in place and dropped explicitly:
//
//	Type        Native layout                          Go value
//	──────────────────────────────────────────────────────────────────
//	QString     ptr u32 | len u32 | cap u32 (UTF-16)   string
//	QVariant    type-id u32 | data[12]                 Variant
//	QColor      spec u32 | a,r,g,b u16 | pad u16       Color
//	QPointF     x f64 | y f64                          QPointF
//	QSizeF      width f64 | height f64                 QSizeF
//	qint32      s32                                    int32
//	bool        u8                                     bool
//	qreal       f64                                    float64
//
// Zeroed memory is a valid value of every type: an empty string, a null
// variant, an invalid color, the origin point and an empty size.
//
// # Conversion Contract
//
// Codec[M] is the generic form of the contract, one value per native type:
//
//	Construct(slot, v)   build a native value from v in uninitialized storage
//	Read(slot)           Go value, or ok=false when it has no Go representation
//	Assign(dst, src)     overwrite dst in place, reusing its buffers
//	Equal(a, b)          native equality used for change detection
//	Drop(slot)           release out-of-line buffers and zero the slot
//
// Read never fabricates a value. A malformed UTF-16 string, a variant with an
// unknown type id, or a color that is not RGB reads as absent, and the caller
// decides what absence means.
package qtypes
