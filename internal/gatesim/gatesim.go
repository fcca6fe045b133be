// Package gatesim is a fake, in-process stand-in for the kernel gate
// loop an external gate/ioctl transport would drive a served image
// through. It is not that transport: it exists only so tests can drive
// an Open -> Read/Write loop -> cancel sequence the way a real serving
// loop would, without depending on a kernel gate device.
package gatesim

import (
	"context"

	"diskimage"
)

// Request is one simulated gate request against an opened image.
type Request struct {
	Write  bool
	Buf    []byte
	Offset int64
}

// Result is the outcome of serving one Request.
type Result struct {
	Err error
}

// Loop repeatedly pulls requests from reqs and serves them against img,
// sending one Result per Request, until reqs is closed or ctx is
// canceled. Mirrors the external gate loop's "one request at a time, no
// internal worker pool" scheduling discipline; it is demonstration
// plumbing for tests, not a production transport.
func Loop(ctx context.Context, img *diskimage.Image, reqs <-chan Request, results chan<- Result) {
	defer close(results)
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-reqs:
			if !ok {
				return
			}
			var err error
			if req.Write {
				err = img.Write(req.Buf, req.Offset)
			} else {
				err = img.Read(req.Buf, req.Offset)
			}
			select {
			case results <- Result{Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}
