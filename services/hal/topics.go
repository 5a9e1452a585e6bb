package hal

import "teensy3-go/bus"

// Control verbs.
const (
	VerbGet      = "get"
	VerbSet      = "set"
	VerbToggle   = "toggle"
	VerbMode     = "mode"
	VerbTransfer = "transfer"
	VerbInfo     = "info"
)

func topicConfigHAL() bus.Topic { return bus.T("config", "hal") }

func TopicState() bus.Topic { return bus.T("hal", "state") }

// hal/dev/<id>/...
func TopicInfo(id string) bus.Topic   { return bus.T("hal", "dev", id, "info") }
func TopicStatus(id string) bus.Topic { return bus.T("hal", "dev", id, "status") }

// TopicControl is hal/dev/<id>/control/<verb>.
func TopicControl(id, verb string) bus.Topic {
	return bus.T("hal", "dev", id, "control", verb)
}

func ctrlWildcard() bus.Topic { return bus.T("hal", "dev", "+", "control", "+") }
