package base

// Palette maps distinct block descriptions to dense indices in first-seen order.
type Palette struct {
	blocks []*BlockData
	index  map[string]int
}

// NewPalette creates a new empty palette.
func NewPalette() *Palette {
	return &Palette{
		blocks: make([]*BlockData, 0),
		index:  make(map[string]int),
	}
}

// NewPaletteWithAir creates a new palette with air at index 0.
func NewPaletteWithAir() *Palette {
	p := NewPalette()
	p.Add(Air)
	return p
}

// BuildPalette scans the list once; the first block encountered gets index 0.
func BuildPalette(list *BlockList) *Palette {
	p := NewPalette()
	for _, e := range list.Elements() {
		p.Add(e.Block)
	}
	return p
}

// Add adds a block to the palette and returns its index.
// If an equal block already exists, returns the existing index.
func (p *Palette) Add(block *BlockData) int {
	if idx, ok := p.index[block.Key()]; ok {
		return idx
	}
	idx := len(p.blocks)
	p.blocks = append(p.blocks, block)
	p.index[block.Key()] = idx
	return idx
}

// Get returns the block at the given index.
func (p *Palette) Get(idx int) *BlockData {
	if idx < 0 || idx >= len(p.blocks) {
		return nil
	}
	return p.blocks[idx]
}

// Index returns the index of a block, or -1 if not found.
func (p *Palette) Index(block *BlockData) int {
	if idx, ok := p.index[block.Key()]; ok {
		return idx
	}
	return -1
}

// Len returns the number of entries in the palette.
func (p *Palette) Len() int {
	return len(p.blocks)
}

// Blocks returns all blocks in index order.
func (p *Palette) Blocks() []*BlockData {
	return p.blocks
}

// ParsePalette converts raw palette compounds into shared block descriptions,
// one per source slot and in source order, so state ids can index it directly.
// Entries without a Name are air. Non-string property values are dropped.
func ParsePalette(entries []any) ([]*BlockData, error) {
	palette := make([]*BlockData, 0, len(entries))
	for i, entry := range entries {
		root, ok := Compound(entry)
		if !ok {
			return nil, InvalidFormat("palette entry %d is not a compound", i)
		}

		id := AirID
		if name, ok := root["Name"].(string); ok {
			id = BlockID(name)
		}

		var props map[string]string
		if raw, ok := Compound(root["Properties"]); ok {
			props = make(map[string]string, len(raw))
			for k, v := range raw {
				if s, ok := v.(string); ok {
					props[k] = s
				}
			}
		}
		palette = append(palette, NewBlockData(id, props))
	}
	return palette, nil
}

// Lookup resolves a state id against a parsed palette.
func Lookup(palette []*BlockData, id int64) (*BlockData, error) {
	if id < 0 || id >= int64(len(palette)) {
		return nil, &PaletteIndexError{Index: id, Size: len(palette)}
	}
	return palette[id], nil
}

// PaletteEntry is the NBT shape of one palette slot shared by the structure
// and Litematica formats.
type PaletteEntry struct {
	Name       string            `nbt:"Name"`
	Properties map[string]string `nbt:"Properties,omitempty"`
}

// Entries returns the palette in its NBT shape.
func (p *Palette) Entries() []PaletteEntry {
	entries := make([]PaletteEntry, len(p.blocks))
	for i, b := range p.blocks {
		entries[i] = PaletteEntry{Name: string(b.ID), Properties: b.PropertyMap()}
	}
	return entries
}
