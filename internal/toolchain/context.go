package toolchain

import (
	"strings"
)

// Context carries everything resolved so far to the stages that follow.
// It is a value type: the With* methods return modified copies.
type Context struct {
	Platform Platform
	Env      Environment
	Product  Product
	JavaHome string
	AntHome  string
}

// NewContext combines a located installation with a product selection.
func NewContext(p Platform, env Environment, sel Selection) Context {
	return Context{
		Platform: p,
		Env:      env,
		Product:  sel.Product,
		JavaHome: sel.JavaHome,
	}
}

// WithAntHome returns a copy with the build engine location set.
func (c Context) WithAntHome(antHome string) Context {
	c.AntHome = antHome
	return c
}

// Vars returns the variables the external tooling must see, in a stable order.
// Empty values are omitted.
func (c Context) Vars() []string {
	var vars []string
	add := func(key, value string) {
		if value != "" {
			vars = append(vars, key+"="+value)
		}
	}
	add(EnvCobdir, c.Env.SecondaryRoot)
	add(EnvJavaHome, c.JavaHome)
	add(EnvAntHome, c.AntHome)
	return vars
}

// Environ returns base with the Context's variables replacing any existing
// definitions. base itself is not modified.
func (c Context) Environ(base []string) []string {
	vars := c.Vars()
	out := make([]string, 0, len(base)+len(vars))
	for _, kv := range base {
		if !c.overrides(kv, vars) {
			out = append(out, kv)
		}
	}
	return append(out, vars...)
}

func (c Context) overrides(kv string, vars []string) bool {
	key, _, _ := strings.Cut(kv, "=")
	for _, v := range vars {
		vkey, _, _ := strings.Cut(v, "=")
		if key == vkey || (c.Platform.IsWindows() && strings.EqualFold(key, vkey)) {
			return true
		}
	}
	return false
}
