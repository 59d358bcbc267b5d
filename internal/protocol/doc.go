// Package protocol decodes the Russound RNET control bus.
//
// RNET controllers emit fixed-layout binary messages on a serial bus. This
// package turns the raw byte stream into zone state updates for a higher
// level consumer. It does not encode or transmit commands.
//
// # Pipeline
//
//	io.Reader -> Assembler -> Frame -> Dispatcher -> BusParser -> ZoneStateUpdate -> Consumer
//
// # Frames
//
// Every frame starts with the marker byte 0xF0. The Assembler buffers bytes
// until a window of the dispatcher's FrameLength is available at a marker,
// dropping any leading bytes that precede the next marker. The dispatcher
// measures each window: a recognized frame is cut at its parser's length, so
// a short frame never eats the start of the next one, and an unrecognized
// window gives up only its marker byte. A read that times out yields no
// frame, so the owning loop regains control between reads.
//
// # Frame Shapes
//
// Parsers classify frames by exact byte values at fixed offsets:
//
//	Power change  [0]=F0 [6]=7F [7]=05 [14]=F1 [15]=23
//	              controller=[1]+1 zone=[19]+1 status=[17]==1
//	Zone info     [0]=F0 [3]=70 [9]=04 [10]=02
//	              zone=[4]+1 controller=[12]+1 status=[20]==1
//	              volume=[22]*2 source=[21]+1
//
// Wire indices are 0-based; ZoneID and Index values are 1-based. Volume is
// reported in half percent steps and is passed through without clamping.
//
// # Usage Example
//
//	updates := make(chan protocol.ZoneStateUpdate, 16)
//	d := protocol.NewDispatcher(protocol.ChannelConsumer(updates))
//	a := protocol.NewAssemblerFor(port, d)
//	for {
//	    f, err := a.Next()
//	    if err != nil {
//	        return err
//	    }
//	    if f != nil {
//	        d.Dispatch(f)
//	    }
//	}
//
// # Thread Safety
//
// Parsers are stateless and a Dispatcher may be shared once registration is
// done. An Assembler belongs to the goroutine that reads its transport.
package protocol
