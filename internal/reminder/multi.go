package reminder

import "errors"

// Multi delivers every reminder to all notifiers, joining their errors.
type Multi []Notifier

func (m Multi) Notify(topic string, count int) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(topic, count); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
