package context

import "os"

// Environment provides read access to the process environment.
type Environment interface {
	Get(key string) string
}

// ExpandEnv replaces $VAR and ${VAR} references in s with values from the
// environment, so that secrets like database passwords can be kept out of the
// configuration file. Unset variables expand to an empty string. s is returned
// unchanged if the context has no environment.
func (c *Context) ExpandEnv(s string) string {
	if c.Env == nil {
		return s
	}
	return os.Expand(s, c.Env.Get)
}
