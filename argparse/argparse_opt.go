package argparse

type parseCfg struct {
	ignoreUnknown bool
	dump          bool
}

type ParseOpt func(*parseCfg)

// WithIgnoreUnknown collects unrecognized tokens instead of failing; see Parser.UnknownArgs.
func WithIgnoreUnknown(ignore bool) ParseOpt {
	return func(c *parseCfg) {
		c.ignoreUnknown = ignore
	}
}

func WithDump(dump bool) ParseOpt {
	return func(c *parseCfg) {
		c.dump = dump
	}
}
