// Package session runs the single read loop that owns an RNET transport.
//
// A Session connects its transport, feeds the byte stream through a frame
// assembler sized by the dispatcher, and dispatches each complete frame
// synchronously before reading again. There is exactly one reader per
// transport, so frames are handled in wire order.
//
// Run returns when its context ends, when Stop is called, or when the
// transport fails. Reconnecting is left to the caller:
//
//	for ctx.Err() == nil {
//	    if err := s.Run(ctx); err != nil {
//	        logging.Warn("Bus session ended", zap.Error(err))
//	    }
//	    time.Sleep(delay)
//	}
package session
