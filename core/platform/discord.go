package platform

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"GoCommando/core"

	"github.com/bwmarrin/discordgo"
)

// Discord adapts a discordgo session to Connection. Every session event is
// received by one interface{} handler and fanned out to the subscribers of
// its name, on the goroutine discordgo started for that event.
type Discord struct {
	session *discordgo.Session

	mu        sync.RWMutex
	listeners map[string][]*listener

	self atomic.Pointer[User]
}

type listener struct {
	fn func(payload any)
}

// NewDiscord creates a discordgo session for a bot token. The session is not opened.
func NewDiscord(token string) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	if core.IsLogDebug() {
		session.LogLevel = discordgo.LogInformational
	}
	return WrapDiscord(session), nil
}

// WrapDiscord adapts an existing session.
func WrapDiscord(session *discordgo.Session) *Discord {
	d := &Discord{
		session:   session,
		listeners: map[string][]*listener{},
	}
	session.AddHandler(d.onEvent)
	return d
}

// Session exposes the underlying session for platform specific work.
func (d *Discord) Session() *discordgo.Session {
	return d.session
}

func (d *Discord) Open() error {
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	return nil
}

func (d *Discord) Close() error {
	return d.session.Close()
}

func (d *Discord) Self() *User {
	return d.self.Load()
}

func (d *Discord) SendMessage(ctx context.Context, channelID, text string) error {
	_, err := d.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return err
}

func (d *Discord) Permissions(userID, channelID string) (Permission, error) {
	perms, err := d.session.UserChannelPermissions(userID, channelID)
	if err != nil {
		return 0, err
	}
	return Permission(perms), nil
}

func (d *Discord) Subscribe(event string, fn func(payload any)) func() {
	l := &listener{fn: fn}
	d.mu.Lock()
	d.listeners[event] = append(d.listeners[event], l)
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			ls := d.listeners[event]
			for i := range ls {
				if ls[i] == l {
					d.listeners[event] = append(ls[:i:i], ls[i+1:]...)
					break
				}
			}
		})
	}
}

func (d *Discord) onEvent(s *discordgo.Session, raw interface{}) {
	name, payload := d.normalize(s, raw)

	d.mu.RLock()
	ls := d.listeners[name]
	d.mu.RUnlock()

	for _, l := range ls {
		l.fn(payload)
	}
}

// normalize converts the events the framework understands into platform
// types and names everything else after its discordgo type.
func (d *Discord) normalize(s *discordgo.Session, raw interface{}) (string, any) {
	switch e := raw.(type) {
	case *discordgo.MessageCreate:
		return EventMessageCreate, convertMessage(s, e.Message)
	case *discordgo.MessageUpdate:
		return EventMessageUpdate, convertMessage(s, e.Message)
	case *discordgo.Ready:
		ready := &Ready{User: convertUser(e.User)}
		d.self.Store(&ready.User)
		core.LogInfoF("Connected as %s", ready.User.Tag())
		return EventReady, ready
	case *discordgo.Connect:
		return EventConnect, e
	case *discordgo.Disconnect:
		return EventDisconnect, e
	}
	return eventName(raw), raw
}

// eventName turns *discordgo.MessageReactionAdd into "messageReactionAdd".
func eventName(raw interface{}) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", raw), "*discordgo.")
	r, n := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[n:]
}

func convertUser(u *discordgo.User) User {
	if u == nil {
		return User{}
	}
	return User{ID: u.ID, Username: u.Username, Discriminator: u.Discriminator, Bot: u.Bot}
}

func convertMessage(s *discordgo.Session, m *discordgo.Message) *Message {
	if m == nil {
		return nil
	}
	msg := &Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}
	if m.Author != nil {
		author := convertUser(m.Author)
		msg.Author = &author
	}
	for _, u := range m.Mentions {
		msg.Mentions = append(msg.Mentions, convertUser(u))
	}
	if m.GuildID != "" && s != nil && s.State != nil {
		if g, err := s.State.Guild(m.GuildID); err == nil {
			msg.Locale = g.PreferredLocale
		}
	}
	return msg
}
