package icache

import "fmt"

// LineState is the externally visible content of one cache line.
type LineState struct {
	Present bool                 `json:"present" yaml:"present"`
	Tag     uint32               `json:"tag" yaml:"tag"`
	Valid   [WordsPerLine]bool   `json:"valid" yaml:"valid"`
	Words   [WordsPerLine]uint32 `json:"words" yaml:"words"`
}

// Line returns the state of the line at index.
func (c *Cache) Line(index int) LineState {
	block := c.blockAt(index)
	ln := c.lines[index]
	return LineState{
		Present: block.IsValid,
		Tag:     uint32(block.Tag),
		Valid:   ln.valid,
		Words:   ln.words,
	}
}

// Lines returns the state of every line.
func (c *Cache) Lines() []LineState {
	out := make([]LineState, NumLines)
	for i := range out {
		out[i] = c.Line(i)
	}
	return out
}

// SetLine overwrites the line at index. A present line must carry a tag that
// maps to index.
func (c *Cache) SetLine(index int, state LineState) error {
	if err := checkLine(index, state); err != nil {
		return err
	}
	c.setLine(index, state)
	return nil
}

func checkLine(index int, state LineState) error {
	if index < 0 || index >= NumLines {
		return fmt.Errorf("icache line %d out of range", index)
	}
	if state.Present && LineIndex(state.Tag) != index {
		return fmt.Errorf("icache line %d: tag 0x%08X belongs to line %d",
			index, state.Tag, LineIndex(state.Tag))
	}
	if state.Tag&(LineSize-1) != 0 {
		return fmt.Errorf("icache line %d: tag 0x%08X is not line aligned", index, state.Tag)
	}
	return nil
}

func (c *Cache) setLine(index int, state LineState) {
	block := c.blockAt(index)
	block.Tag = uint64(state.Tag)
	block.IsValid = state.Present
	block.IsDirty = false

	c.lines[index] = line{valid: state.Valid, words: state.Words}
}

// SetLines restores every line from states. Nothing changes unless every
// line is acceptable.
func (c *Cache) SetLines(states []LineState) error {
	if len(states) != NumLines {
		return fmt.Errorf("expected %d icache lines, got %d", NumLines, len(states))
	}
	for i, s := range states {
		if err := checkLine(i, s); err != nil {
			return err
		}
	}
	for i, s := range states {
		c.setLine(i, s)
	}
	return nil
}
