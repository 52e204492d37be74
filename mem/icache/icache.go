// Package icache models the CPU instruction cache: 256 direct-mapped lines
// of four instruction words, each word carrying its own valid bit.
package icache

import (
	"fmt"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"

	"github.com/sarchlab/psxsim/mem/bus"
)

// Geometry of the instruction cache.
const (
	NumLines     = 256
	WordsPerLine = 4
	LineSize     = WordsPerLine * 4
)

// FillPolicy selects how many words a miss brings into a line.
type FillPolicy uint8

const (
	// FillWord fetches only the missing word. The line tag is replaced and
	// the other three valid bits are cleared.
	FillWord FillPolicy = iota
	// FillToLineEnd fetches from the missing word to the end of the line,
	// clearing the valid bits of the words before it.
	FillToLineEnd
)

// String returns the configuration name of the policy.
func (p FillPolicy) String() string {
	switch p {
	case FillWord:
		return "word"
	case FillToLineEnd:
		return "line_end"
	default:
		return fmt.Sprintf("fill(%d)", uint8(p))
	}
}

// ParseFillPolicy converts a configuration name into a FillPolicy.
func ParseFillPolicy(name string) (FillPolicy, error) {
	switch name {
	case "", "word":
		return FillWord, nil
	case "line_end":
		return FillToLineEnd, nil
	default:
		return 0, fmt.Errorf("unknown icache fill policy %q", name)
	}
}

// Statistics holds cache access counters.
type Statistics struct {
	Reads     uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

type line struct {
	valid [WordsPerLine]bool
	words [WordsPerLine]uint32
}

// Cache is the instruction cache. Tags are tracked by an Akita directory
// with one way per set, so the set index is address bits [11:4] and the tag
// is the line-aligned physical address.
type Cache struct {
	fill      FillPolicy
	directory *akitacache.DirectoryImpl
	lines     [NumLines]line
	stats     Statistics
}

// New creates an empty instruction cache.
func New(fill FillPolicy) *Cache {
	return &Cache{
		fill: fill,
		directory: akitacache.NewDirectory(
			NumLines,
			1,
			LineSize,
			akitacache.NewLRUVictimFinder(),
		),
	}
}

// LineIndex returns the line selected by addr (bits [11:4]).
func LineIndex(addr uint32) int {
	return int(addr>>4) & (NumLines - 1)
}

// WordIndex returns the word within the line selected by addr (bits [3:2]).
func WordIndex(addr uint32) int {
	return int(addr>>2) & (WordsPerLine - 1)
}

// Tag returns the line-aligned address stored as the line tag.
func Tag(addr uint32) uint32 {
	return addr &^ (LineSize - 1)
}

// FillPolicy returns the configured fill policy.
func (c *Cache) FillPolicy() FillPolicy {
	return c.fill
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// ResetStats clears cache statistics.
func (c *Cache) ResetStats() {
	c.stats = Statistics{}
}

// Fetch returns the instruction word at the physical address addr, reading
// through backing on a miss. The line is untouched when the requested word
// cannot be read; a later word that fails ends a line-end fill early.
func (c *Cache) Fetch(addr uint32, backing bus.Bus) (uint32, error) {
	c.stats.Reads++

	tag := uint64(Tag(addr))
	word := WordIndex(addr)

	block := c.directory.Lookup(0, tag)
	if block != nil && block.IsValid && c.lines[block.SetID].valid[word] {
		c.stats.Hits++
		c.directory.Visit(block)
		return c.lines[block.SetID].words[word], nil
	}

	c.stats.Misses++
	return c.handleMiss(addr, backing)
}

func (c *Cache) handleMiss(addr uint32, backing bus.Bus) (uint32, error) {
	tag := uint64(Tag(addr))
	first := WordIndex(addr)
	last := first
	if c.fill == FillToLineEnd {
		last = WordsPerLine - 1
	}

	var fetched [WordsPerLine]uint32
	for i := first; i <= last; i++ {
		v, err := backing.Load(uint32(tag)+uint32(i*4), bus.Word)
		if err != nil {
			if i == first {
				return 0, err
			}
			// The rest of the line stays invalid.
			last = i - 1
			break
		}
		fetched[i] = v
	}

	victim := c.directory.FindVictim(tag)
	if victim.IsValid && victim.Tag != tag {
		c.stats.Evictions++
	}

	victim.Tag = tag
	victim.IsValid = true
	victim.IsDirty = false

	ln := &c.lines[victim.SetID]
	ln.valid = [WordsPerLine]bool{}
	for i := first; i <= last; i++ {
		ln.words[i] = fetched[i]
		ln.valid[i] = true
	}

	c.directory.Visit(victim)

	return fetched[first], nil
}

func (c *Cache) blockAt(index int) *akitacache.Block {
	return c.directory.GetSets()[index].Blocks[0]
}

// Invalidate clears the tag and every valid bit of the line selected by
// addr, whatever block it currently holds.
func (c *Cache) Invalidate(addr uint32) {
	index := LineIndex(addr)
	block := c.blockAt(index)
	block.IsValid = false
	c.lines[index].valid = [WordsPerLine]bool{}
}

// WriteWord overwrites the word slot selected by addr without touching the
// tag or the valid bits.
func (c *Cache) WriteWord(addr uint32, value uint32) {
	c.lines[LineIndex(addr)].words[WordIndex(addr)] = value
}

// Reset invalidates every line and clears statistics.
func (c *Cache) Reset() {
	c.directory.Reset()
	c.lines = [NumLines]line{}
	c.stats = Statistics{}
}
