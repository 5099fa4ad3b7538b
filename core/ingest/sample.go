package ingest

const (
	SampleMeetingTitle = "Project Planning and Team Updates"
	SampleMeetingDate  = "2024-12-08"
)

// SampleMeetingNotes is the transcript loaded by the seed command.
const SampleMeetingNotes = `
Project Planning and Team Updates Meeting - December 8, 2024

4:19 Dr. Sonia emphasized the importance of all participants joining the class with their videos on before the instructor starts the training session.

6:01 Each team was instructed to present their approach for the assigned tasks, with discussions to follow for refinement.

6:16 Rajat was introduced as the new project manager for the group, responsible for managing tasks and addressing queries moving forward.

8:51 Sandesh presented a detailed design for the project, including a user-agent interaction model and a feedback loop for gathering requirements.

11:10 Rajat will be the primary point of contact for refining the project outputs, as the tool is being built specifically for him.

13:02 The project charter is a live document that will evolve based on project requirements and stakeholder inputs, and it will differ for various types of projects, but the template provided for Agent One will be used as a reference.

15:57 There are two modes for inputting project requirements into the agent: uploading a document or conversing directly with the agent to refine the requirements, which will help streamline the process.

20:40 The team will focus on integrating Neo4j into their project, with plans to create a use case involving a Graph Retrieval Agent, utilizing documents such as meeting notes for conversational AI development.

21:15 Chandana's team interpreted the task as creating a system design for the entire project, resulting in a flowchart that includes user actions and data management, rather than focusing solely on the database integration.

24:24 Rajat will provide access credentials for MongoDB and assist with other necessary details, while teams are encouraged to set up their own Neo4j accounts for prototyping purposes.

26:44 The integration framework for the agent has been divided into five phases, with the second phase focusing on defining input, output, and core functionalities such as creating, deleting, and updating folders.

28:37 The agent will also manage meeting notes by creating, reading, and deleting them in phase three, with a roadmap established for testing and deployment.

Action Items:
- Set up individual Neo4j accounts for prototyping
- Complete project charter template based on Agent One reference
- Implement document upload and conversation modes
- Design the five-phase integration framework
- Set up meeting notes management system
`
