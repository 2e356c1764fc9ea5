package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/edgard/relaybot/internal/text"
)

// Validate checks struct tags and the cross-field rules the tags cannot
// express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Telegram.AdminUserID != 0 && slices.Contains(c.Telegram.BlockedUserIDs, c.Telegram.AdminUserID) {
		return errors.New("invalid configuration: admin user cannot be blocked")
	}
	if c.ReplyChunkLimit() < 1 {
		return fmt.Errorf("invalid configuration: reply_prefix (%d UTF-16 units) leaves no room in max_reply_length %d",
			text.UTF16Len(c.Dispatch.ReplyPrefix), c.Dispatch.MaxReplyLength)
	}
	for _, id := range c.Telegram.AllowedUserIDs {
		if slices.Contains(c.Telegram.BlockedUserIDs, id) {
			return fmt.Errorf("invalid configuration: user %d is both allowed and blocked", id)
		}
	}
	return nil
}

// ReplyChunkLimit is the chunk size for replies in UTF-16 code units. The
// first chunk carries the reply prefix, so its length is reserved.
func (c *Config) ReplyChunkLimit() int {
	return c.Dispatch.MaxReplyLength - text.UTF16Len(c.Dispatch.ReplyPrefix)
}

// IsUserAuthorized reports whether userID may talk to the bot:
//  1. the admin is always authorized
//  2. blocked users are denied
//  3. with an allow list only listed users are authorized
//  4. otherwise everyone is
func (c *Config) IsUserAuthorized(userID int64) bool {
	if c.Telegram.AdminUserID != 0 && userID == c.Telegram.AdminUserID {
		return true
	}
	if slices.Contains(c.Telegram.BlockedUserIDs, userID) {
		return false
	}
	if len(c.Telegram.AllowedUserIDs) > 0 {
		return slices.Contains(c.Telegram.AllowedUserIDs, userID)
	}
	return true
}

// IsAdmin reports whether userID is the configured admin.
func (c *Config) IsAdmin(userID int64) bool {
	return c.Telegram.AdminUserID != 0 && userID == c.Telegram.AdminUserID
}
