// Package probe estimates community sizes by binary-searching the
// listing offset.
//
// A full crawl is the only exact way to count a community's items, but it
// costs one request per page. The probe exploits the listing endpoint's
// behavior instead: any offset inside the listing returns content, any
// offset past the end returns end of data. Binary search over the offset
// pins down the boundary, which is the item count, in logarithmically few
// requests.
//
// The estimate is a snapshot: items posted or removed while the search
// runs can shift the boundary by a few positions. Probe results size the
// archiving work; the crawl itself never depends on them.
package probe
