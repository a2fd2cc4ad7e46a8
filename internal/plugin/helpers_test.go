package plugin

import (
	"github.com/leapstack-labs/assetwrap/pkg/sourcemap"
	"github.com/leapstack-labs/assetwrap/pkg/transform"
)

// recordingTransformer counts calls per file and remembers the last input.
type recordingTransformer struct {
	inner transform.Transformer
	fn    func(code string, opts transform.Options) (*transform.Output, error)

	calls     map[string]int
	lastCode  string
	lastOpts  transform.Options
	callOrder []string
}

func newRecorder(fn func(code string, opts transform.Options) (*transform.Output, error)) *recordingTransformer {
	return &recordingTransformer{fn: fn, calls: map[string]int{}}
}

func wrapRecorder(inner transform.Transformer) *recordingTransformer {
	return &recordingTransformer{inner: inner, calls: map[string]int{}}
}

func (r *recordingTransformer) Name() string {
	if r.inner != nil {
		return r.inner.Name()
	}
	return "fake"
}

func (r *recordingTransformer) Transform(code string, opts transform.Options) (*transform.Output, error) {
	file, _ := opts[transform.KeySourceFileName].(string)
	r.calls[file]++
	r.callOrder = append(r.callOrder, file)
	r.lastCode = code
	r.lastOpts = opts
	if r.inner != nil {
		return r.inner.Transform(code, opts)
	}
	return r.fn(code, opts)
}

func (r *recordingTransformer) total() int {
	n := 0
	for _, c := range r.calls {
		n += c
	}
	return n
}

// echo returns the input unchanged with a one-record map when requested.
func echo(code string, opts transform.Options) (*transform.Output, error) {
	out := &transform.Output{Code: code}
	if opts.SourceMaps() {
		file, _ := opts[transform.KeySourceFileName].(string)
		out.Map = &sourcemap.Map{Version: sourcemap.Version, Sources: []string{file}, Mappings: "AAAA"}
	}
	return out, nil
}

func failWith(line, column int) func(string, transform.Options) (*transform.Output, error) {
	return func(string, transform.Options) (*transform.Output, error) {
		return nil, &transform.Failure{
			Message:  "Unexpected token",
			Location: &transform.Location{Line: line, Column: column},
		}
	}
}
