package pythonstatic

import (
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythonir"
	"github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"
)

// subscriptStore joins the stored value into the elements of every container the base may
// hold and rebinds the base where it is bound; indices are not tracked
func (a *Analyzer) subscriptStore(st pythonir.SubscriptStore) {
	base := a.lookup(st.Object)
	v := a.lookup(st.Value)
	key := a.lookup(st.Index)

	updated := base
	for _, c := range base.Containers() {
		updated = updated.Replace(c, c.WithStore(v, key))
	}
	a.state.UpdateVariable(st.Object, updated)
}

// subscriptLoad unions the elements of every container the base may hold. Indexing a string
// yields a string; anything else yields Unknown.
func (a *Analyzer) subscriptLoad(st pythonir.SubscriptLoad) pythontype.Value {
	base := a.lookup(st.Object)

	var out pythontype.Value
	for _, o := range base.Objects() {
		switch o := o.(type) {
		case pythontype.Container:
			out = pythontype.Merge(out, o.Elem)
		case pythontype.Constant:
			if o.Type == pythontype.StrType {
				out = pythontype.Merge(out, pythontype.AnyStr())
			} else {
				out = pythontype.Merge(out, pythontype.UnknownValue())
			}
		default:
			out = pythontype.Merge(out, pythontype.UnknownValue())
		}
	}
	return out.OrUnknown()
}
