package draco

import "github.com/cocosip/draco-go/internal/mesh"

// attributeOptionKey is the (attribute_id, name) pair spec.md §6 names as
// the key space for per-attribute named integer options.
type attributeOptionKey struct {
	AttributeID uint32
	Name        string
}

// Named per-attribute option keys recognized by this encoder.
const (
	OptionQuantizationBits = "quantization_bits"
)

// EncodeOptions mirrors the teacher's own parameter-struct convention
// (JPEG2000LosslessParameters): a concrete struct with documented
// field-by-field defaults and a Validate method, rather than a generic
// options-bag interface.
type EncodeOptions struct {
	// CompressionLevel is the 0..10 knob named in spec.md §6's CLI surface
	// (-cl). It sets the compression-level delta of the sequential
	// connectivity and attribute symbol streams and is passed to the
	// KD-tree point-cloud coder.
	CompressionLevel int

	// UseEdgebreaker selects Edgebreaker connectivity for meshes when
	// true, sequential connectivity otherwise. Ignored for point clouds.
	UseEdgebreaker bool

	// UseKDTree selects the KD-tree point codec for point clouds when
	// true, sequential position coding otherwise. Ignored for meshes.
	UseKDTree bool

	// PositionQuantizationBits/NormalQuantizationBits/
	// TexCoordQuantizationBits/GenericQuantizationBits are the -qp/-qn/
	// -qt/-qg CLI knobs of spec.md §6, applied to every attribute of the
	// corresponding kind unless overridden per attribute_id below.
	PositionQuantizationBits int
	NormalQuantizationBits   int
	TexCoordQuantizationBits int
	GenericQuantizationBits  int

	// Metadata carries the optional key/value block of spec.md §6.
	Metadata map[string]string

	attributeOptions map[attributeOptionKey]int
}

// NewEncodeOptions returns options with the teacher's own "documented
// field-by-field defaults" convention: a mid compression level and the
// quantization bit depths spec.md §8's test properties exercise (q>=14
// positions, q>=10 normals).
func NewEncodeOptions() *EncodeOptions {
	return &EncodeOptions{
		CompressionLevel:         7,
		UseEdgebreaker:           true,
		UseKDTree:                true,
		PositionQuantizationBits: 14,
		NormalQuantizationBits:   10,
		TexCoordQuantizationBits: 12,
		GenericQuantizationBits:  12,
		attributeOptions:         make(map[attributeOptionKey]int),
	}
}

// WithCompressionLevel sets the 0..10 compression level and returns the
// options for chaining, matching the teacher's WithXxx chainable-setter
// convention.
func (o *EncodeOptions) WithCompressionLevel(level int) *EncodeOptions {
	o.CompressionLevel = level
	return o
}

// WithMetadata attaches a metadata key/value block.
func (o *EncodeOptions) WithMetadata(m map[string]string) *EncodeOptions {
	o.Metadata = m
	return o
}

// WithAttributeOption sets a named integer option for one attribute id,
// overriding the corresponding global quantization field for that
// attribute only. This is the concrete form of spec.md §6's "options
// object with equivalent named integer options keyed by (attribute_id,
// name)".
func (o *EncodeOptions) WithAttributeOption(attributeID uint32, name string, value int) *EncodeOptions {
	if o.attributeOptions == nil {
		o.attributeOptions = make(map[attributeOptionKey]int)
	}
	o.attributeOptions[attributeOptionKey{AttributeID: attributeID, Name: name}] = value
	return o
}

func (o *EncodeOptions) attributeOption(attributeID uint32, name string, fallback int) int {
	if o.attributeOptions == nil {
		return fallback
	}
	if v, ok := o.attributeOptions[attributeOptionKey{AttributeID: attributeID, Name: name}]; ok {
		return v
	}
	return fallback
}

// Validate clamps out-of-range fields to their defaults rather than
// failing outright, matching JPEG2000LosslessParameters.Validate's
// "checks if the parameters are valid and adjusts them if needed" style.
func (o *EncodeOptions) Validate() error {
	if o.CompressionLevel < 0 || o.CompressionLevel > 10 {
		o.CompressionLevel = 7
	}
	clampBits := func(v, def int) int {
		if v < 1 || v > 30 {
			return def
		}
		return v
	}
	o.PositionQuantizationBits = clampBits(o.PositionQuantizationBits, 14)
	o.NormalQuantizationBits = clampBits(o.NormalQuantizationBits, 10)
	o.TexCoordQuantizationBits = clampBits(o.TexCoordQuantizationBits, 12)
	o.GenericQuantizationBits = clampBits(o.GenericQuantizationBits, 12)
	return nil
}

func (o *EncodeOptions) quantizationBitsFor(kind mesh.AttributeKind, attributeID uint32) int {
	switch kind {
	case mesh.AttributePosition:
		return o.attributeOption(attributeID, OptionQuantizationBits, o.PositionQuantizationBits)
	case mesh.AttributeNormal:
		return o.attributeOption(attributeID, OptionQuantizationBits, o.NormalQuantizationBits)
	case mesh.AttributeTexCoord:
		return o.attributeOption(attributeID, OptionQuantizationBits, o.TexCoordQuantizationBits)
	default:
		return o.attributeOption(attributeID, OptionQuantizationBits, o.GenericQuantizationBits)
	}
}
