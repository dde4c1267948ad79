// Package tracker detects and follows feature points across frames.
//
// Detection scores every pixel by the smaller eigenvalue of the windowed
// image gradient matrix and keeps the strongest spatially separated corners.
// Propagation follows previously detected points into a later frame with
// pyramidal Lucas-Kanade optical flow; points that leave the frame or sit in
// textureless regions are dropped, and survivors keep their IDs so a track
// can be followed across an exported CSV.
package tracker
