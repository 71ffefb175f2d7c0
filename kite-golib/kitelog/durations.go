package kitelog

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"
)

type duration struct {
	name     string
	duration time.Duration
}

// Durations tracks named phase durations in the order they were recorded
type Durations []duration

// Record records a duration, adding to an existing entry of the same name
func (t *Durations) Record(name string, d time.Duration) {
	for i := range *t {
		if (*t)[i].name == name {
			(*t)[i].duration += d
			return
		}
	}
	*t = append(*t, duration{name, d})
}

// Time runs f and records how long it took under the given name
func (t *Durations) Time(name string, f func()) {
	start := time.Now()
	defer func() {
		t.Record(name, time.Since(start))
	}()
	f()
}

// Get returns the total duration recorded under name
func (t Durations) Get(name string) (time.Duration, bool) {
	for _, entry := range t {
		if entry.name == name {
			return entry.duration, true
		}
	}
	return 0, false
}

// Names returns the recorded names in recording order
func (t Durations) Names() []string {
	var names []string
	for _, entry := range t {
		names = append(names, entry.name)
	}
	return names
}

// Flush writes the recorded durations as a table to the given handler
func (t *Durations) Flush(i Interface) {
	var b bytes.Buffer
	tw := tabwriter.NewWriter(&b, 4, 4, 0, ' ', 0)
	for _, entry := range *t {
		fmt.Fprintf(tw, "   %s\t%s\n", entry.name, entry.duration)
	}
	tw.Flush()

	i.Println(b.String())
}

// WithDurations returns a derived Logger with a new Durations tracker
func (l *Logger) WithDurations() *Logger {
	out := *l
	out.Durations = nil
	return &out
}
