// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

/*
Package webhook posts a linked account's characters to a downstream service.

The downstream service is an opaque HTTP sink accepting JSON. Delivery is at
most once: a payload is posted a single time and a failed post is returned to
the caller, who logs it. The sink's response status is logged at debug level
and otherwise ignored.

	c, err := webhook.NewClient("https://bot.example.com/link", webhook.WithLogger(logger))
	if err != nil {
		// handle error
	}
	err = c.Send(ctx, webhook.Payload{DiscordID: 123, Characters: chars})
*/
package webhook
