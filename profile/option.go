//go:build pprof

package profile

import "github.com/pkg/profile"

// option appends settings to a control.
type option func(control) control

// control accumulates the settings passed to [profile.Start].
type control struct {
	settings []func(*profile.Profile)
}

func (c control) with(opts ...option) control {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

func withMode(m string) option {
	return func(c control) control {
		if fn, ok := modes[m]; ok {
			c.settings = append(c.settings, fn)
		}

		return c
	}
}

func withPath(p string) option {
	return func(c control) control {
		if p != "" {
			c.settings = append(c.settings, profile.ProfilePath(p))
		}

		return c
	}
}

func withQuiet(v bool) option {
	return func(c control) control {
		if v {
			c.settings = append(c.settings, profile.Quiet)
		}

		return c
	}
}
