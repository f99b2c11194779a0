// Package fcm sends push notifications through Firebase Cloud Messaging.
//
// Channel wraps the official Firebase Admin SDK messaging client and plugs
// into the delivery engine as a channel for devices addressed by an FCM
// registration token. Gateway rejections, including unregistered tokens, are
// reported as ordinary send errors; the delivery engine decides whether to
// retry.
package fcm
