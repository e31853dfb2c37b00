// Package guide is the remote-control EPG engine: it maps time onto the
// horizontal axis, projects loaded channels and programs into a sparse grid,
// moves focus across that grid the way a TV remote does, and decides when
// scrolling should load more channels or more hours.
//
// Nothing here draws or fetches on its own. The UI owns a Session, feeds it
// keys and clock ticks, and runs the BatchRequest and ExtendRequest values
// it hands out inside commands.
package guide
