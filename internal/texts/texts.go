// Package texts is the race passage collaborator. The coordinator treats
// passages as opaque strings; anything implementing Source can replace the
// built-in pool.
package texts

import "math/rand"

type Source interface {
	Passage() string
}

var defaultPassages = []string{
	"The quick brown fox jumps over the lazy dog. Pack my box with five dozen liquor jugs. How vexingly quick daft zebras jump! The five boxing wizards jump quickly. Sphinx of black quartz, judge my vow.",
	"Amazingly few discotheques provide jukeboxes. Jaded zombies acted quaintly but kept driving their oxen forward. A wizard's job is to vex chumps quickly in fog.",
	"Crazy Fredrick bought many very exquisite opal jewels. We promptly judged antique ivory buckles for the next prize. Sixty zippers were quickly picked from the woven jute bag.",
	"Grumpy wizards make toxic brew for the evil queen and jack. Jackdaws love my big sphinx of quartz. The job requires extra pluck and zeal from every young wage earner.",
}

// StaticPool hands out passages from a fixed set, uniformly at random.
type StaticPool struct {
	passages []string
	rnd      *rand.Rand
}

func NewStaticPool(seed int64, passages ...string) *StaticPool {
	if len(passages) == 0 {
		passages = defaultPassages
	}
	return &StaticPool{
		passages: passages,
		rnd:      rand.New(rand.NewSource(seed)),
	}
}

func (p *StaticPool) Passage() string {
	return p.passages[p.rnd.Intn(len(p.passages))]
}
