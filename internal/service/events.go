package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/core/ports"
)

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Emit(string, string, any) {}

// FanOut delivers every event to each sink in order.
type FanOut []ports.EventSink

func (f FanOut) Emit(session, event string, payload any) {
	for _, s := range f {
		s.Emit(session, event, payload)
	}
}

// LogSink writes events to a logger. The run command uses it to follow a
// job on the terminal.
type LogSink struct {
	Logger logrus.FieldLogger
}

func (s LogSink) Emit(session, event string, payload any) {
	entry := s.Logger.WithField("event", event)
	switch p := payload.(type) {
	case domain.ProgressEvent:
		entry.WithField("progress", p.Percent).Info(p.Message)
	case map[string]string:
		entry.WithFields(logrus.Fields{"data": p}).Info(event)
	default:
		entry.Debug(event)
	}
}

// Describe turns a classified error into the message shown to the
// subscriber.
func Describe(err *domain.Error, job domain.JobRequest) string {
	label := job.Kind.Label()
	switch err.Kind {
	case domain.KindInvalidSource:
		return err.Message
	case domain.KindRecordNotFound:
		return fmt.Sprintf("No se pudo obtener el archivo de %s: la pauta %s no existe.", label, job.Identifier)
	case domain.KindDownloadFailed:
		return fmt.Sprintf("No se pudo obtener el archivo de %s. Posibles causas:\n"+
			"• El archivo no está disponible en el servidor\n"+
			"• El archivo fue movido o eliminado\n"+
			"• Problemas de conectividad", label)
	case domain.KindTranscodeFailed:
		return fmt.Sprintf("El video de %s se descargó pero no se pudo extraer su audio.", label)
	case domain.KindSourceUnavailable:
		return "El video es privado, fue eliminado o no está disponible."
	case domain.KindExtractionFailed:
		return "No se pudo descargar el video de YouTube. Posibles causas:\n" +
			"• YouTube está bloqueando la descarga\n" +
			"• El video tiene restricciones de edad\n" +
			"• Problemas de conectividad\n\n" +
			"Sugerencias:\n" +
			"• Intenta más tarde o con otro video\n" +
			"• Verifica que el video sea público"
	case domain.KindTranscriptionFailed:
		return "No se pudo transcribir el audio o la transcripción quedó vacía."
	default:
		return "Error inesperado durante el procesamiento: " + err.Message
	}
}
