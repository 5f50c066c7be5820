package progress

import "sync"

// Broker fans progress updates out to subscribers. Slow subscribers only
// ever miss intermediate values, never the latest one.
type Broker struct {
	mu   sync.Mutex
	subs map[chan State]struct{}
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan State]struct{})}
}

// Subscribe returns a channel of updates and a func to stop receiving them.
func (b *Broker) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broker) Publish(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}
