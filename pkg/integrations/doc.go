// Package integrations provides the HTTP plumbing for package index clients.
//
// The [Client] type wraps an [http.Client] with default headers, a
// [cache.Cache] for immutable responses, and sentinel errors
// ([ErrNotFound], [ErrNetwork], [ErrDecode]) that callers map onto the
// pipeline's error codes. The [pypi] subpackage builds on it to read the
// PyPI update feed and per-release metadata documents.
//
//	c := integrations.NewClient(fileCache, 24*time.Hour, nil)
//	var v map[string]any
//	err := c.Get(ctx, "https://pypi.org/pypi/requests/json", &v)
//
// [pypi]: github.com/matzehuels/pydigger/pkg/integrations/pypi
// [cache.Cache]: github.com/matzehuels/pydigger/pkg/cache.Cache
package integrations
