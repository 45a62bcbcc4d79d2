package base

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// AirID is the block id used for padding cells and for palette slots without a name.
const AirID BlockID = "minecraft:air"

// Air is the shared, property-less air block.
var Air = NewBlockData(AirID, nil)

// BlockID is a namespaced block name, e.g. "minecraft:stone".
type BlockID string

// BlockPos is an integer block position.
type BlockPos struct {
	X, Y, Z int32
}

// Less orders positions by X, then Y, then Z.
func (p BlockPos) Less(o BlockPos) bool {
	if p.X != o.X {
		return p.X < o.X
	}
	if p.Y != o.Y {
		return p.Y < o.Y
	}
	return p.Z < o.Z
}

// Add returns the component-wise sum of p and o.
func (p BlockPos) Add(o BlockPos) BlockPos {
	return BlockPos{X: p.X + o.X, Y: p.Y + o.Y, Z: p.Z + o.Z}
}

// Sub returns the component-wise difference of p and o.
func (p BlockPos) Sub(o BlockPos) BlockPos {
	return BlockPos{X: p.X - o.X, Y: p.Y - o.Y, Z: p.Z - o.Z}
}

func (p BlockPos) String() string {
	return "(" + strconv.Itoa(int(p.X)) + "," + strconv.Itoa(int(p.Y)) + "," + strconv.Itoa(int(p.Z)) + ")"
}

// Property is a single block state property.
type Property struct {
	Key, Value string
}

// BlockData is an immutable block description: a block id plus its state
// properties sorted by key. Values are shared by pointer between every
// position that uses them and compared by content through Key.
type BlockData struct {
	ID         BlockID
	properties []Property
	key        string
	text       string
}

// NewBlockData creates a block description. The property map is copied.
func NewBlockData(id BlockID, props map[string]string) *BlockData {
	b := &BlockData{ID: id}
	if len(props) > 0 {
		keys := slices.Sorted(maps.Keys(props))
		b.properties = make([]Property, len(keys))
		for i, k := range keys {
			b.properties[i] = Property{Key: k, Value: props[k]}
		}
	}
	b.key = blockKey(b.ID, b.properties, true)
	b.text = blockKey(b.ID, b.properties, false)
	return b
}

// ParseBlockData parses a block state string such as
// "minecraft:oak_stairs[facing=north,half=bottom]".
func ParseBlockData(s string) *BlockData {
	name, props, _ := strings.Cut(s, "[")
	if props == "" {
		return NewBlockData(BlockID(name), nil)
	}

	props = strings.TrimSuffix(props, "]")
	properties := make(map[string]string)
	for part := range strings.SplitSeq(props, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		properties[key] = value
	}
	return NewBlockData(BlockID(name), properties)
}

// Properties returns the properties in key order. The slice must not be modified.
func (b *BlockData) Properties() []Property {
	return b.properties
}

// Property returns the value of a single property.
func (b *BlockData) Property(key string) (string, bool) {
	i, ok := slices.BinarySearchFunc(b.properties, key, func(p Property, k string) int {
		return strings.Compare(p.Key, k)
	})
	if !ok {
		return "", false
	}
	return b.properties[i].Value, true
}

// PropertyMap returns the properties as a fresh map, or nil if there are none.
func (b *BlockData) PropertyMap() map[string]string {
	if len(b.properties) == 0 {
		return nil
	}
	m := make(map[string]string, len(b.properties))
	for _, p := range b.properties {
		m[p.Key] = p.Value
	}
	return m
}

// Key returns the canonical state string used for structural equality.
// Separators inside the id, keys and values are escaped with a backslash,
// so two descriptions share a key only if they are equal. For ordinary
// states the key matches String.
func (b *BlockData) Key() string {
	return b.key
}

// Equal reports whether both descriptions have the same id and properties.
func (b *BlockData) Equal(o *BlockData) bool {
	if b == o {
		return true
	}
	if b == nil || o == nil {
		return false
	}
	return b.key == o.key
}

// IsAir reports whether the block is one of the air variants.
func (b *BlockData) IsAir() bool {
	return b == nil || IsAirID(b.ID)
}

// String returns the state in the usual "id[k=v,...]" notation.
func (b *BlockData) String() string {
	return b.text
}

// IsAirID reports whether id names an air variant.
func IsAirID(id BlockID) bool {
	switch id {
	case "", "minecraft:air", "minecraft:void_air", "minecraft:cave_air":
		return true
	default:
		return false
	}
}

func blockKey(id BlockID, props []Property, escape bool) string {
	var buf strings.Builder
	write := func(s string) {
		if !escape || !strings.ContainsAny(s, `\,=[]`) {
			buf.WriteString(s)
			return
		}
		for _, r := range s {
			switch r {
			case '\\', ',', '=', '[', ']':
				buf.WriteByte('\\')
			}
			buf.WriteRune(r)
		}
	}
	write(string(id))
	if len(props) == 0 {
		return buf.String()
	}
	buf.WriteByte('[')
	for i, p := range props {
		if i > 0 {
			buf.WriteByte(',')
		}
		write(p.Key)
		buf.WriteByte('=')
		write(p.Value)
	}
	buf.WriteByte(']')
	return buf.String()
}
