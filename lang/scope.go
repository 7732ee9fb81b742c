package lang

// Tier names a scope searched by [Lookup].
type Tier int

const (
	TierNone Tier = iota
	TierLocal
	TierGlobal
	TierVariable
	TierHost
)

func (t Tier) String() string {
	switch t {
	case TierLocal:
		return "local"
	case TierGlobal:
		return "global"
	case TierVariable:
		return "variable"
	case TierHost:
		return "host"
	default:
		return "none"
	}
}

// Resolve returns the value bound to name in ec, or [Absent].
//
// Untagged names search locals, then globals, then variables, then host
// globals. A local tag searches only locals; a global tag searches globals
// and then host globals.
func Resolve(ec *ExecutionContext, name string, scope ScopeTag) any {
	v, tier := Lookup(ec, name, scope)
	if tier == TierNone {
		return Absent
	}

	return v
}

// Lookup is [Resolve] that also reports the tier the name was found in.
func Lookup(ec *ExecutionContext, name string, scope ScopeTag) (any, Tier) {
	if ec == nil {
		return nil, TierNone
	}

	switch scope {
	case ScopeLocal:
		if v, ok := ec.Locals.Get(name); ok {
			return v, TierLocal
		}

		return nil, TierNone

	case ScopeGlobal:
		if v, ok := ec.Globals.Get(name); ok {
			return v, TierGlobal
		}

		return lookupHost(ec, name)
	}

	if v, ok := ec.Locals.Get(name); ok {
		return v, TierLocal
	}

	if v, ok := ec.Globals.Get(name); ok {
		return v, TierGlobal
	}

	if v, ok := ec.Variables.Get(name); ok {
		return v, TierVariable
	}

	return lookupHost(ec, name)
}

func lookupHost(ec *ExecutionContext, name string) (any, Tier) {
	if ec.Host == nil {
		return nil, TierNone
	}

	if v, ok := ec.Host.Global(name); ok {
		return v, TierHost
	}

	return nil, TierNone
}

// Names returns every name visible from ec in resolution order, without
// duplicates. Host globals are included when the host can enumerate them.
func Names(ec *ExecutionContext) []string {
	if ec == nil {
		return nil
	}

	var (
		seen  = map[string]bool{}
		names []string
	)

	add := func(keys []string) {
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}

	add(ec.Locals.Keys())
	add(ec.Globals.Keys())
	add(ec.Variables.Keys())

	if en, ok := hostAs[interface{ GlobalNames() []string }](ec.Host); ok {
		add(en.GlobalNames())
	}

	if _, ok := hostAs[GlobalsHost](ec.Host); ok {
		add(sortedKeys(builtinGlobals()))
	}

	return names
}
