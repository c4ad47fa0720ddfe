package head

import "strings"

const (
	initPrefix = "(function(){const pfInit=() => {"
	initSuffix = "};if(window.$){$(function(){pfInit()})}" +
		"else if(document.readyState==='complete'){pfInit()}" +
		"else{document.addEventListener('DOMContentLoaded', pfInit)}})();"
)

// InitScriptQueue collects initialization fragments in the order they are
// added. Duplicates are kept.
type InitScriptQueue struct {
	scripts []string
}

// Add appends a fragment. Empty fragments are ignored.
func (q *InitScriptQueue) Add(script string) {
	if script == "" {
		return
	}
	q.scripts = append(q.scripts, script)
}

// Len returns the number of queued fragments.
func (q *InitScriptQueue) Len() int {
	return len(q.scripts)
}

// Drain returns the queued fragments and empties the queue.
func (q *InitScriptQueue) Drain() []string {
	scripts := q.scripts
	q.scripts = nil
	return scripts
}

// BuildInitScript joins scripts, each terminated by ';'. Unless moveToBottom
// is set, the result runs once the DOM is ready. It returns false when there
// is nothing to run.
func BuildInitScript(scripts []string, moveToBottom bool) (string, bool) {
	if len(scripts) == 0 {
		return "", false
	}

	var b strings.Builder
	if !moveToBottom {
		b.WriteString(initPrefix)
	}
	for _, s := range scripts {
		b.WriteString(s)
		b.WriteByte(';')
	}
	if !moveToBottom {
		b.WriteString(initSuffix)
	}
	return b.String(), true
}
