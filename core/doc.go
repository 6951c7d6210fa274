// Package core implements the client-side state layer of the dinehall
// ordering client: the shopping cart, placed orders, the active table
// reservation, the authentication session, and the reservation booking
// wizard.
//
// Every state container follows the same pattern: it is a plain service
// object constructed once per application session, it hydrates its state
// from a pluggable Store on construction, and it writes its full snapshot
// back through the Store after every mutation. Derived values such as the
// cart total are recomputed synchronously so they are always consistent
// with the state they are derived from.
//
// Remote collaborators (the admin and customer backends) are consumed
// through small interfaces (TableLister, ReservationBooker,
// OrderSubmitter) so the containers can be exercised against fakes. The
// api package provides the production implementations.
package core
