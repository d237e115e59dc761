package config

// DefaultSchemaYAML is the mapping table for the save document shape the game
// currently produces. It is written by `savetrail init` and edited from there;
// fields the game adds later route to the unmapped catch-all until the mapping
// is extended.
const DefaultSchemaYAML = `version: 1

scalars:
  - {field: id, type: text}
  - {field: date, type: text}
  - {field: started, type: text}
  - {field: lastSaved, type: text}
  - {field: companyName, type: text}
  - {field: saveGameName, type: text}
  - {field: fileName, type: text}
  - {field: lastVersion, type: text}
  - {field: gameover, type: boolean}
  - {field: state, type: integer}
  - {field: paused, type: boolean}
  - {field: userLossEnabled, type: boolean}
  - {field: betaVersionAtStart, type: integer}
  - {field: balance, type: currency}
  - {field: lastPricePerHour, type: integer}
  - {field: xp, type: real}
  - {field: researchPoints, type: integer}
  - {field: amountOfAvailableResearchItems, type: integer}
  - {field: selectedFloor, type: integer}
  - {field: selectedBuildingName, type: text}
  - {field: maxContractHours, type: integer}
  - {field: contractsCompleted, type: integer}
  - {field: needsNewLoan, type: boolean}
  - {field: autoStartTimeMachine, type: boolean}

collections:
  - field: employees
    columns:
      - {field: id, type: text}
      - {field: name, type: text}
      - {field: originalName, type: text}
      - {field: employeeTypeName, type: text}
      - {field: salary, type: integer}
      - {field: level, type: text}
      - {field: speed, type: real}
      - {field: age, type: integer}
      - {field: mood, type: real}
      - {field: gender, type: text}
      - {field: overtimeMinutes, type: integer}
      - {field: hoursLeft, type: integer}
      - {field: creationTime, type: integer}
      - {field: superstar, type: boolean}
      - {field: isTraining, type: boolean}
      - {field: fired, type: boolean}
      - {field: hired, type: text}
      - {field: task, type: json}
      - {field: demands, type: json}
      - {field: schedule, type: json}
      - {field: components, type: json}
      - {field: negotiation, type: json}
  - field: employeesOrder
    columns:
      - {field: value, type: text}
  - field: candidates
    columns:
      - {field: id, type: text}
      - {field: name, type: text}
      - {field: employeeTypeName, type: text}
      - {field: salary, type: integer}
      - {field: level, type: text}
      - {field: speed, type: real}
      - {field: age, type: integer}
      - {field: gender, type: text}
  - field: transactions
    columns:
      - {field: id, type: text}
      - {field: day, type: integer}
      - {field: hour, type: integer}
      - {field: minute, type: integer}
      - {field: amount, type: currency}
      - {field: label, type: text}
      - {field: balance, type: currency}
  - field: products
    columns:
      - {field: id, type: text}
      - {field: name, type: text}
      - {field: frameworkName, type: text}
      - {field: ageInDays, type: integer}
      - {field: stats, type: json}
      - {field: investor, type: json}
  - field: featureInstances
    columns:
      - {field: id, type: text}
      - {field: featureName, type: text}
      - {field: productId, type: text}
      - {field: activated, type: boolean}
      - {field: efficiency, type: json}
      - {field: quality, type: json}
      - {field: requirements, type: json}
  - field: jeets
    columns:
      - {field: id, type: text}
      - {field: name, type: text}
      - {field: handle, type: text}
      - {field: gender, type: text}
      - {field: avatar, type: text}
      - {field: text, type: text}
      - {field: day, type: integer}
      - {field: read, type: boolean}
  - field: marketValues
    table: marketValues
    key_field: component
    columns:
      - {field: component, type: text}
      - {field: basePrice, type: currency}
      - {field: change, type: real}
  - field: loans
    columns:
      - {field: provider, type: text}
      - {field: daysLeft, type: integer}
      - {field: amountLeft, type: currency}
      - {field: active, type: boolean}
  - field: researchedItems
    columns:
      - {field: value, type: text}
  - field: activatedBenefits
    columns:
      - {field: value, type: text}

objects:
  - field: office
    mode: blob
  - field: inventory
    mode: blob
  - field: progress
    mode: blob
`

// DefaultProjectYAML is the scaffold written by `savetrail init`. Paths and
// the plausibility cutoff are expected to be edited per installation.
const DefaultProjectYAML = `project: %s
version: 1

company: %s

save_dir: ./saves
working_dir: ./game_saves

database:
  dsn: sqlite://savetrail.db

plausibility:
  min_balance: "1000"
  require_employees: true
`
