// Package rfcomm connects to the Serial Port service of a remote Bluetooth
// device without blocking the calling goroutine.
//
// A connection is established in two phases. First the RFCOMM channel of the
// service is looked up with the Service Discovery Protocol (SDP), over its own
// nonblocking L2CAP session. Then a nonblocking connect is issued on that
// channel and its completion is detected with a peer address query.
//
// Both phases are exposed as state machines with a single Step method. Every
// step either finishes or returns the file descriptor and direction the caller
// has to wait for (with epoll, poll or any other readiness loop) before
// calling Step again:
//
//	sock, _ := rfcomm.NewSocket()
//	c := rfcomm.NewConnector(sock, addr)
//	defer c.Close()
//	for {
//		st, err := c.Step()
//		if err != nil {
//			return err
//		}
//		if st.Done {
//			break
//		}
//		// wait until st.Fd is ready for st.Dir
//	}
//
// The native parts are only available on Linux (BlueZ). Other platforms
// return ErrNotSupported.
package rfcomm // import "tinygo.org/x/rfcomm"
