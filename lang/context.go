package lang

// entry is one Context binding. A name binds either a variable or a
// function, never both. Setting one kind replaces the other.
type entry struct {
	val  Value
	fn   Function
	isFn bool
}

// Context holds the variable and function bindings visible to one
// evaluation. References resolve against it, setters write into it, and
// function calls consult it before the Registry.
//
// A Context performs no locking of its own. Evaluation is synchronous,
// so a Context owned by one goroutine at a time needs none; sharing one
// across goroutines requires external synchronization.
type Context struct {
	entries map[string]entry
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{entries: make(map[string]entry)}
}

// SetVariable binds name to a value, replacing any prior binding of
// either kind.
func (c *Context) SetVariable(name string, v Value) {
	if c.entries == nil {
		c.entries = make(map[string]entry)
	}

	c.entries[name] = entry{val: v}
}

// SetFunction binds name to a function, replacing any prior binding of
// either kind.
func (c *Context) SetFunction(name string, fn Function) {
	if c.entries == nil {
		c.entries = make(map[string]entry)
	}

	c.entries[name] = entry{fn: fn, isFn: true}
}

// Variable returns the value bound to name, reporting false when name is
// unbound or bound to a function.
func (c *Context) Variable(name string) (Value, bool) {
	e, ok := c.entries[name]
	if !ok || e.isFn {
		return None(), false
	}

	return e.val, true
}

// Function returns the function bound to name, reporting false when name
// is unbound or bound to a variable.
func (c *Context) Function(name string) (Function, bool) {
	e, ok := c.entries[name]
	if !ok || !e.isFn {
		return nil, false
	}

	return e.fn, true
}

// Resolve reads name the way a reference does during evaluation: an
// unbound name resolves to None, a variable to its value, and a function
// to the result of calling it with no arguments.
func (c *Context) Resolve(name string) (Value, error) {
	e, ok := c.entries[name]
	if !ok {
		return None(), nil
	}

	if e.isFn {
		return e.fn()
	}

	return e.val, nil
}

// Names returns every bound name, sorted.
func (c *Context) Names() []string {
	return sortedKeys(c.entries)
}
