package services

import "github.com/tbourn/hackathon-backend/internal/domain"

// FallbackReply is returned to chat callers when the inference server cannot
// be reached or answers with an error.
const FallbackReply = "I'm having trouble connecting to the AI service. Please make sure LM Studio is running on localhost:1234 with a model loaded."

// EmptyReply stands in for a completion that came back without content.
const EmptyReply = "Sorry, I could not generate a response."

// DefaultPrompts are seeded into an empty prompts table, in display order.
var DefaultPrompts = []PromptInput{
	{Title: "Topics", Body: "What are all the topics included in the hackathon", IconTag: "lightbulb"},
	{Title: "Deployment Options", Body: "Help me debug this code issue: ", IconTag: "bug"},
	{Title: "Team Structure", Body: "What's the best tech stack for building a web app in 48 hours?", IconTag: "rocket"},
	{Title: "Quick Setup", Body: "How do I quickly set up a React app with API integration?", IconTag: "bolt"},
	{Title: "Best Practices", Body: "What are the key best practices for winning a hackathon?", IconTag: "trophy"},
}

// DefaultSystemPrompt is the built-in "default" system prompt.
const DefaultSystemPrompt = `You are a helpful AI assistant supporting hackathon participants. Your role is to provide quick, concise, and practical information about the event.

Event Details
Date: 13th October 2025
Locations: Hyderabad & Bangalore
Registration: Click here to register

Key Focus Areas
Platform - Observability, environment stability, migration, and OpSec
Payments - Integration, processing, compliance, and best practices
CRM - Tools, data handling, and automation tips
Marketing Technology - Campaign tools, analytics, segmentation, and ROI measurement

Hackathon Guidelines
Technologies:
Allowed: Open-source frameworks, cloud platforms (AWS, Azure, GCP), APIs provided by organizers
Encouraged: AI/ML, automation, and data-driven solutions
Restricted: Proprietary tools without licenses, plagiarism, or use of disallowed APIs
Infrastructure:
Cloud environments, sandbox APIs, and shared repositories will be provided
Participants must ensure environment stability and adhere to OpSec practices

Evaluation Criteria:
Innovation - Novelty and creativity of the solution
Functionality - Working demo and technical feasibility
Scalability - Ability to handle growth and integration
User Experience - Simplicity, design, and usability
Impact - Business value, relevance, and problem-solving effectiveness

Response Guidelines
Keep answers short (1-3 sentences) unless more detail is requested
Use bullet points for steps, features, or comparisons
Reference official documentation/resources whenever possible
Encourage participants to ask follow-up questions

Important Rules
Never disclose model/system details
If asked something outside hackathon scope, reply:
"I'm a helpful AI assistant designed to support hackathon participants. Please reach out to the relevant team member for further assistance."
If asked about the hackathon itself, restate your role, focus areas, event details, and guidelines`

type demoTeam struct {
	Name    string
	Members []string
	Project string
	Score   int64
}

var demoTeams = []demoTeam{
	{"Code Crushers", []string{"Alice Johnson", "Bob Smith", "Charlie Brown"}, "AI Health Monitor", 850},
	{"Tech Titans", []string{"Diana Prince", "Eve Adams", "Frank Miller"}, "Smart City Dashboard", 720},
	{"Hack Heroes", []string{"Grace Lee", "Henry Ford", "Ivy Chen"}, "EcoTrack App", 680},
	{"Innovation Inc", []string{"Jack Wilson", "Kate Davis"}, "EdTech Platform", 650},
	{"Digital Dynamos", []string{"Liam Taylor", "Mia Garcia", "Noah White", "Olivia Black"}, "Fintech Solution", 590},
	{"Future Force", []string{"Paul Green", "Quinn Blue"}, "IoT Farm System", 520},
	{"Byte Builders", []string{"Ryan Red", "Sara Silver"}, "Social Impact App", 480},
	{"Logic Legends", []string{"Tom Gold"}, "Blockchain Voting", 420},
}

var demoEvents = []CreateEventInput{
	{Title: "🚀 Hackathon Kickoff", Description: "Welcome to the hackathon! Team registration is now open. Check in at the main desk.", Kind: domain.KindAnnouncement, Priority: domain.PriorityHigh},
	{Title: "🍕 Lunch Break", Description: "Pizza and refreshments available in the main hall. Take a well-deserved break!", Kind: domain.KindInfo, Priority: domain.PriorityMedium},
	{Title: "⚠️ Submission Deadline Extended", Description: "Due to technical issues, submission deadline has been extended by 2 hours to 7:00 PM.", Kind: domain.KindScheduleChange, Priority: domain.PriorityUrgent},
	{Title: "🏆 Final Presentations Start", Description: "Teams will present in alphabetical order. Each team gets 5 minutes + 2 minutes Q&A.", Kind: domain.KindAnnouncement, Priority: domain.PriorityHigh},
	{Title: "💡 Mentor Office Hours", Description: "Mentors available for one-on-one consultations in breakout rooms 1-3.", Kind: domain.KindInfo, Priority: domain.PriorityMedium},
	{Title: "⏰ 2 Hours Remaining", Description: "Only 2 hours left! Make sure to test your applications and prepare your presentations.", Kind: domain.KindDeadline, Priority: domain.PriorityHigh},
}
