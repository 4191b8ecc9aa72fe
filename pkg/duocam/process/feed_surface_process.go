package process

import (
	"context"
	"image"
	"time"

	"github.com/tauraamui/duocam/pkg/log"
	"github.com/tauraamui/duocam/pkg/video/videobackend"
	"github.com/tauraamui/duocam/pkg/video/videoframe"
)

// Sink receives decoded frames for the connection they came from.
type Sink interface {
	Name() string
	Present(videobackend.Connection, image.Image) bool
}

var readFailureBackoff = 250 * time.Millisecond

// FeedSurfaceProcess copies frames from conn onto dst until cancelled
// or until the connection is closed, which happens when the surface
// is rebound to another stream.
func FeedSurfaceProcess(conn videobackend.Connection, frame videoframe.Frame, dst Sink) func(context.Context) []chan interface{} {
	return func(cancel context.Context) []chan interface{} {
		stopping := make(chan interface{})
		go func(cancel context.Context, stopping chan interface{}) {
			defer close(stopping)
			defer frame.Close()
			for {
				time.Sleep(1 * time.Microsecond)
				select {
				case <-cancel.Done():
					return
				default:
					if !conn.IsOpen() {
						log.Debug("Stream [%s] for surface [%s] closed, no longer feeding", conn.UUID(), dst.Name())
						return
					}
					feed(conn, frame, dst)
				}
			}
		}(cancel, stopping)
		return []chan interface{}{stopping}
	}
}

func feed(conn videobackend.Connection, frame videoframe.Frame, dst Sink) {
	if err := conn.Read(frame); err != nil {
		if !conn.IsOpen() {
			return
		}
		log.Error("Unable to retrieve frame for surface [%s]: %v", dst.Name(), err)
		time.Sleep(readFailureBackoff)
		return
	}

	img, err := frame.ToImage()
	if err != nil {
		log.Debug("Skipping unreadable frame for surface [%s]: %v", dst.Name(), err)
		return
	}

	if !dst.Present(conn, img) {
		log.Debug("Surface [%s] dropped frame from stream [%s]", dst.Name(), conn.UUID())
	}
}
