package registry

// builtinModules is the fixed enumeration of platform built-in module
// names registered ahead of declared dependencies and project files —
// spec.md §4.1 step 3a.
var builtinModules = []string{
	"assert", "buffer", "child_process", "cluster", "console", "constants",
	"crypto", "dgram", "dns", "domain", "events", "fs", "http", "http2",
	"https", "inspector", "module", "net", "os", "path", "perf_hooks",
	"process", "punycode", "querystring", "readline", "repl", "stream",
	"string_decoder", "timers", "tls", "trace_events", "tty", "url",
	"util", "v8", "vm", "worker_threads", "zlib",
}
