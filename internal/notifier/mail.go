package notifier

import (
	"fmt"

	"github.com/campushub/campushub/internal/models"
)

const dateLayout = "2006-01-02"

func WelcomeMessage(user models.User) Message {
	return Message{
		To:      []string{user.Email},
		Subject: "Welcome to CampusHub!",
		Body: fmt.Sprintf("Hey %s!\n\nWelcome to CampusHub, your go-to platform for campus events.\n\nStay tuned for updates on meetups, workshops, and fun activities.\n\nHappy exploring!\nThe CampusHub Team",
			user.Username),
	}
}

func RegistrationMessage(event models.Event, user models.User) Message {
	return Message{
		To:      []string{user.Email},
		Subject: fmt.Sprintf("You're Registered: %s!", event.Title),
		Body: fmt.Sprintf("Hey %s,\n\nYou're successfully registered for %s!\n\nDate: %s\nTime: %s\nLocation: %s\n\nSee you there!\nThe CampusHub Team",
			user.Username, event.Title, event.Date.Format(dateLayout), event.Time, event.Location),
	}
}

// AnnouncementMessage is the batched fan-out for event creation and edits.
// One outbound message carries every recipient.
func AnnouncementMessage(event models.Event, recipients []string, updated bool) Message {
	subject := fmt.Sprintf("New Event: %s", event.Title)
	lead := "A new event"
	if updated {
		subject = fmt.Sprintf("Event Updated: %s", event.Title)
		lead = "An event"
	}

	return Message{
		To:      recipients,
		Subject: subject,
		Body: fmt.Sprintf("%s %q is happening on %s at %s in %s. Don't miss it!\nThe CampusHub Team",
			lead, event.Title, event.Date.Format(dateLayout), event.Time, event.Location),
	}
}
