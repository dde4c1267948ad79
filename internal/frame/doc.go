// Package frame defines the in-memory representation of decoded video frames.
//
// A Frame is a packed RGB24 byte buffer plus its dimensions and source index.
// Everything downstream (effects, compositing, cropping, tracking, encoding)
// operates on this one representation, so decoders normalize to it and
// encoders consume it directly. Conversions to and from image.NRGBA are
// provided for code that works with the standard image libraries.
package frame
