package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/ratefit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServe(t *testing.T) {
	Convey("Given a server on an ephemeral port", t, func() {
		srv := newHTTPServer("127.0.0.1:0", http.NotFoundHandler())
		So(srv.ReadHeaderTimeout, ShouldEqual, readHeaderTimeout)

		Convey("When its context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- serve(ctx, srv, logger.Get()) }()
			time.Sleep(50 * time.Millisecond)
			cancel()

			Convey("Then it shuts down cleanly", func() {
				select {
				case err := <-done:
					So(err, ShouldBeNil)
				case <-time.After(5 * time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})
		})
	})

	Convey("Given an address already in use", t, func() {
		busy := httptest.NewServer(http.NotFoundHandler())
		defer busy.Close()
		srv := newHTTPServer(busy.Listener.Addr().String(), http.NotFoundHandler())

		Convey("Then serve returns the listen error", func() {
			err := serve(context.Background(), srv, logger.Get())
			So(err, ShouldNotBeNil)
		})
	})
}
