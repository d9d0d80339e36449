// Package display maps session errors to UI-agnostic presentation
// intents. The mapping is deterministic; rendering is the screens' job.
package display

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/moimlabs/moim-go/internal/domain/provider"
	"github.com/moimlabs/moim-go/internal/domain/session"
)

// Style says how an intent should be presented.
type Style string

const (
	// StyleSilent suppresses any UI.
	StyleSilent Style = "silent"
	// StyleToast is a transient, auto-dismissing banner.
	StyleToast Style = "toast"
	// StyleAlert is a blocking modal requiring explicit dismissal.
	// Reserved for destructive confirmations, not I/O errors.
	StyleAlert Style = "alert"
	// StyleInfo is a non-error informational banner.
	StyleInfo Style = "info"
)

// Toast durations: short for plain messages, long when an action button
// is attached.
const (
	ToastDuration           = 3 * time.Second
	ToastWithActionDuration = 5 * time.Second
)

// Intent is the UI-agnostic instruction for presenting a message.
type Intent struct {
	Style    Style
	Message  string
	Duration time.Duration
}

// Silent returns the no-op intent.
func Silent() Intent {
	return Intent{Style: StyleSilent}
}

// Toast returns a transient banner intent.
func Toast(message string) Intent {
	return Intent{Style: StyleToast, Message: message, Duration: ToastDuration}
}

// Alert returns a blocking modal intent.
func Alert(message string) Intent {
	return Intent{Style: StyleAlert, Message: message}
}

// Info returns an informational banner intent.
func Info(message string) Intent {
	return Intent{Style: StyleInfo, Message: message, Duration: ToastDuration}
}

// User-facing messages. The internal reason behind developer-facing
// failures never reaches the user.
const (
	msgCheckConnection = "Please check your network connection."
	msgGenericRetry    = "Something went wrong. Please try again."
)

// FromError maps a session error to its presentation intent.
// Deterministic over the closed error vocabulary. Developer-facing kinds
// collapse to the generic retry toast, but their internal reason is
// logged so it is never silently dropped.
func FromError(logger *slog.Logger, err *session.Error) Intent {
	if err == nil {
		return Silent()
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch err.Kind {
	case session.KindSignInCancelled:
		return Silent()

	case session.KindNetworkUnavailable:
		return Toast(msgCheckConnection)

	case session.KindAccountProblem:
		return Toast(fmt.Sprintf("There is a problem with your %s account.", providerName(err.Provider)))

	case session.KindPermissionRequired:
		return Toast(fmt.Sprintf("%s needs the %q permission to sign you in.", providerName(err.Provider), err.Permission))

	case session.KindMissingProfileData:
		return Toast("Your account is missing required profile information.")

	case session.KindAPIError:
		if err.Message != "" {
			return Toast(err.Message)
		}
		return Toast(msgGenericRetry)

	case session.KindServerError:
		return Toast(msgGenericRetry)

	case session.KindDataParsingFailed,
		session.KindCannotFindPresentationContext,
		session.KindDependencyMissing,
		session.KindUnknown:
		logger.Error("internal session failure surfaced to user as generic toast",
			"kind", string(err.Kind),
			"error", err.Error(),
		)
		return Toast(msgGenericRetry)

	default:
		logger.Error("unclassified session error kind", "kind", string(err.Kind))
		return Toast(msgGenericRetry)
	}
}

// providerName returns the display name for a provider tag.
func providerName(p provider.Provider) string {
	switch p {
	case provider.Google:
		return "Google"
	case provider.Apple:
		return "Apple"
	case provider.Kakao:
		return "Kakao"
	default:
		return "your sign-in provider"
	}
}
